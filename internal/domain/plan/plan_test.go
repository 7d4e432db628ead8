package plan_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	domainErrors "github.com/lingora/payment-service/internal/domain/errors"
	"github.com/lingora/payment-service/internal/domain/plan"
)

func TestCatalog_Lookup(t *testing.T) {
	catalog := plan.NewCatalog(
		plan.Plan{
			Key:         "monthly",
			ProductName: "Premium Monthly",
			Amount:      decimal.RequireFromString("14.99"),
			Currency:    "usd",
			Interval:    plan.IntervalMonth,
		},
		plan.Plan{
			Key:         "yearly",
			ProductName: "Premium Yearly",
			Amount:      decimal.RequireFromString("119.99"),
			Currency:    "usd",
			Interval:    plan.IntervalYear,
		},
	)

	t.Run("recognized keys resolve to their charge", func(t *testing.T) {
		monthly, err := catalog.Lookup("monthly")
		assert.NoError(t, err)
		assert.Equal(t, int64(1499), monthly.MinorUnits())
		assert.Equal(t, plan.IntervalMonth, monthly.Interval)

		yearly, err := catalog.Lookup("yearly")
		assert.NoError(t, err)
		assert.Equal(t, int64(11999), yearly.MinorUnits())
		assert.Equal(t, plan.IntervalYear, yearly.Interval)
	})

	t.Run("unknown key is a validation error, never a default", func(t *testing.T) {
		_, err := catalog.Lookup("weekly")
		assert.ErrorIs(t, err, domainErrors.ErrUnknownPlan)

		_, err = catalog.Lookup("")
		assert.ErrorIs(t, err, domainErrors.ErrUnknownPlan)
	})

	t.Run("empty catalog is a configuration error", func(t *testing.T) {
		empty := plan.NewCatalog()
		_, err := empty.Lookup("monthly")
		assert.ErrorIs(t, err, domainErrors.ErrEmptyPlanCatalog)
	})
}

func TestPlan_MinorUnits(t *testing.T) {
	p := plan.Plan{Amount: decimal.RequireFromString("0.50")}
	assert.Equal(t, int64(50), p.MinorUnits())

	p = plan.Plan{Amount: decimal.RequireFromString("100")}
	assert.Equal(t, int64(10000), p.MinorUnits())
}
