package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	handlers "github.com/lingora/payment-service/internal/adapter/handler/http"
	"github.com/lingora/payment-service/internal/domain/plan"
	"github.com/lingora/payment-service/internal/infrastructure/billing/paypal"
)

func paypalTestCatalog() *plan.Catalog {
	return plan.NewCatalog(plan.Plan{
		Key:         "monthly",
		ProductName: "Premium Monthly",
		Amount:      decimal.RequireFromString("14.99"),
		Currency:    "usd",
		Interval:    plan.IntervalMonth,
	})
}

func paypalStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "ORDER-1", "status": "CREATED"})
	})
	return httptest.NewServer(mux)
}

func TestPayPalHandler_CreateOrder(t *testing.T) {
	logger := zap.NewNop()
	e := echo.New()
	e.Validator = &stubValidator{validate: validator.New()}

	srv := paypalStub(t)
	defer srv.Close()

	client := paypal.NewWithBaseURL(srv.URL, "id", "secret", 5*time.Second, logger)
	h := handlers.NewPayPalHandler(client, paypalTestCatalog(), logger)

	post := func(body string) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/paypal/create-order", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		return e.NewContext(req, rec), rec
	}

	t.Run("creates an order for a recognized plan", func(t *testing.T) {
		c, rec := post(`{"plan_key":"monthly"}`)
		assert.NoError(t, h.CreateOrder(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ORDER-1", resp["order_id"])
		assert.Equal(t, "CREATED", resp["status"])
	})

	t.Run("rejects an unknown plan", func(t *testing.T) {
		c, rec := post(`{"plan_key":"weekly"}`)
		assert.NoError(t, h.CreateOrder(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing plan_key", func(t *testing.T) {
		c, rec := post(`{}`)
		assert.NoError(t, h.CreateOrder(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing credentials are a configuration error", func(t *testing.T) {
		unconfigured := paypal.NewWithBaseURL(srv.URL, "", "", 5*time.Second, logger)
		h := handlers.NewPayPalHandler(unconfigured, paypalTestCatalog(), logger)

		c, rec := post(`{"plan_key":"monthly"}`)
		assert.NoError(t, h.CreateOrder(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
