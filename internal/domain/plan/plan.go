package plan

import (
	"github.com/shopspring/decimal"

	domainErrors "github.com/lingora/payment-service/internal/domain/errors"
)

// Interval is the billing interval of a recurring plan.
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Plan describes one purchasable subscription plan. Amount is in major
// currency units (e.g. 14.99 USD); the provider wants minor units.
type Plan struct {
	Key         string
	ProductName string
	Amount      decimal.Decimal
	Currency    string
	Interval    Interval
}

// MinorUnits converts the plan amount to the provider's smallest currency
// unit. Only two-decimal currencies are configured today.
func (p Plan) MinorUnits() int64 {
	return p.Amount.Shift(2).IntPart()
}

// Catalog is the closed enumeration of recognized plan keys. Anything not in
// the catalog is a validation failure, never a default.
type Catalog struct {
	plans map[string]Plan
}

func NewCatalog(plans ...Plan) *Catalog {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.Key] = p
	}
	return &Catalog{plans: m}
}

// Lookup returns the plan for the given key. An empty catalog is a
// configuration failure and is reported distinctly from an unknown key.
func (c *Catalog) Lookup(key string) (Plan, error) {
	if len(c.plans) == 0 {
		return Plan{}, domainErrors.ErrEmptyPlanCatalog
	}
	p, ok := c.plans[key]
	if !ok {
		return Plan{}, domainErrors.ErrUnknownPlan
	}
	return p, nil
}

func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.plans))
	for k := range c.plans {
		keys = append(keys, k)
	}
	return keys
}
