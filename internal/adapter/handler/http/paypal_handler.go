package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lingora/payment-service/internal/domain/errors"
	"github.com/lingora/payment-service/internal/domain/plan"
	"github.com/lingora/payment-service/internal/infrastructure/billing/paypal"
)

// PayPalHandler proxies the two PayPal order calls the web client makes.
type PayPalHandler struct {
	client *paypal.Client
	plans  *plan.Catalog
	logger *zap.Logger
}

func NewPayPalHandler(client *paypal.Client, plans *plan.Catalog, logger *zap.Logger) *PayPalHandler {
	return &PayPalHandler{
		client: client,
		plans:  plans,
		logger: logger,
	}
}

type createOrderRequest struct {
	PlanKey string `json:"plan_key" validate:"required"`
}

type captureOrderRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// CreateOrder handles POST /api/payments/paypal/create-order
func (h *PayPalHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_key is required"})
	}

	selected, err := h.plans.Lookup(req.PlanKey)
	if err != nil {
		return c.JSON(paypalErrorStatus(err), echo.Map{"error": err.Error()})
	}

	if !h.client.Configured() {
		h.logger.Error("paypal order rejected: credentials are not configured")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": domainErrors.ErrMissingCredentials.Error()})
	}

	order, err := h.client.CreateOrder(
		c.Request().Context(),
		uuid.NewString(),
		selected.Amount.StringFixed(2),
		selected.Currency,
		selected.ProductName,
	)
	if err != nil {
		h.logger.Error("failed to create paypal order",
			zap.String("plan_key", req.PlanKey),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// CaptureOrder handles POST /api/payments/paypal/capture-order
func (h *PayPalHandler) CaptureOrder(c echo.Context) error {
	var req captureOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id is required"})
	}

	if !h.client.Configured() {
		h.logger.Error("paypal capture rejected: credentials are not configured")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": domainErrors.ErrMissingCredentials.Error()})
	}

	order, err := h.client.CaptureOrder(c.Request().Context(), req.OrderID)
	if err != nil {
		h.logger.Error("failed to capture paypal order",
			zap.String("order_id", req.OrderID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":   order.ID,
		"status":     order.Status,
		"capture_id": order.CaptureID,
	})
}

func paypalErrorStatus(err error) int {
	if errors.Is(err, domainErrors.ErrUnknownPlan) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
