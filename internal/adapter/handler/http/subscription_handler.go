package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lingora/payment-service/internal/domain/errors"
	"github.com/lingora/payment-service/internal/usecase"
)

// SubscriptionCreator is what the handler needs from the subscription
// service.
type SubscriptionCreator interface {
	CreateSubscription(ctx context.Context, in usecase.CreateSubscriptionInput) (*usecase.CreateSubscriptionResult, error)
}

type SubscriptionHandler struct {
	service SubscriptionCreator
	logger  *zap.Logger

	// stripeConfigured is false when the secret key is absent from the
	// deployment; requests then fail with a configuration error, not a
	// provider error.
	stripeConfigured bool
}

func NewSubscriptionHandler(service SubscriptionCreator, stripeConfigured bool, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:          service,
		logger:           logger,
		stripeConfigured: stripeConfigured,
	}
}

type createSubscriptionRequest struct {
	PlanKey         string `json:"plan_key" validate:"required"`
	PaymentMethodID string `json:"payment_method_id"`
	Email           string `json:"email" validate:"omitempty,email"`
	Name            string `json:"name"`
}

// CreateSubscription handles POST /api/payments/:provider/create-subscription
func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	if c.Param("provider") != "stripe" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": domainErrors.ErrUnknownProvider.Error()})
	}

	var req createSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_key is required"})
	}

	if !h.stripeConfigured {
		h.logger.Error("subscription request rejected: stripe secret key is not configured")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": domainErrors.ErrMissingCredentials.Error()})
	}

	result, err := h.service.CreateSubscription(c.Request().Context(), usecase.CreateSubscriptionInput{
		PlanKey:         req.PlanKey,
		PaymentMethodID: req.PaymentMethodID,
		Email:           req.Email,
		Name:            req.Name,
	})
	if err != nil {
		status := subscriptionErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to create subscription",
				zap.String("plan_key", req.PlanKey),
				zap.Error(err))
		}
		return c.JSON(status, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// subscriptionErrorStatus maps the error taxonomy to a response status:
// validation failures are the caller's to fix, everything else (config,
// provider, exhausted resolution, integrity) is a 500.
func subscriptionErrorStatus(err error) int {
	if errors.Is(err, domainErrors.ErrUnknownPlan) ||
		errors.Is(err, domainErrors.ErrMissingPaymentMethod) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
