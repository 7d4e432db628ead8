package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/lingora/payment-service/internal/domain/billing"
	domainErrors "github.com/lingora/payment-service/internal/domain/errors"
	"github.com/lingora/payment-service/internal/domain/plan"
)

// CreateSubscriptionInput is the validated request to start a subscription.
type CreateSubscriptionInput struct {
	PlanKey         string
	PaymentMethodID string
	Email           string
	Name            string
}

// CreateSubscriptionResult carries everything the browser needs to complete
// the payment.
type CreateSubscriptionResult struct {
	CustomerID      string `json:"customer_id"`
	SubscriptionID  string `json:"subscription_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Status          string `json:"status"`
}

// ResolutionExhaustedError is returned when every resolution strategy failed
// to surface a payment intent. Its message embeds the diagnostics as JSON so
// an operator can tell "needs customer action" from "system bug" without
// re-querying the provider.
type ResolutionExhaustedError struct {
	SubscriptionID string
	Resolution     *Resolution
}

type resolutionDiagnostics struct {
	SubscriptionID      string `json:"subscription_id"`
	InvoiceID           string `json:"invoice_id"`
	InvoiceStatus       string `json:"invoice_status"`
	InvoicePayAttempted bool   `json:"invoice_pay_attempted"`
	InvoicePayError     string `json:"invoice_pay_error"`
}

func (e *ResolutionExhaustedError) Error() string {
	diag, err := json.Marshal(resolutionDiagnostics{
		SubscriptionID:      e.SubscriptionID,
		InvoiceID:           e.Resolution.InvoiceID,
		InvoiceStatus:       e.Resolution.InvoiceStatus,
		InvoicePayAttempted: e.Resolution.InvoicePayAttempted,
		InvoicePayError:     e.Resolution.InvoicePayError,
	})
	if err != nil {
		return "could not resolve a payment intent for subscription " + e.SubscriptionID
	}
	return "could not resolve a payment intent: " + string(diag)
}

// SubscriptionService orchestrates subscription creation against the billing
// provider: validate the plan selection, create the customer and payment
// instrument association, create the product/price/subscription, then resolve
// the payment intent whose client secret the caller needs.
type SubscriptionService struct {
	billing  billing.Client
	plans    *plan.Catalog
	resolver *PaymentIntentResolver
	logger   *zap.Logger
}

func NewSubscriptionService(billingClient billing.Client, plans *plan.Catalog, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		billing:  billingClient,
		plans:    plans,
		resolver: NewPaymentIntentResolver(billingClient, logger),
		logger:   logger,
	}
}

// CreateSubscription runs the full chain. Provider errors are returned as-is
// so the handler can surface the provider's message verbatim. The request is
// deliberately stateless and single-shot: a duplicate request creates a fresh
// customer, product, price, and subscription.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (*CreateSubscriptionResult, error) {
	selected, err := s.plans.Lookup(in.PlanKey)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethodID == "" {
		return nil, domainErrors.ErrMissingPaymentMethod
	}

	customer, err := s.billing.CreateCustomer(ctx, in.Email, in.Name)
	if err != nil {
		return nil, err
	}

	if err := s.billing.AttachPaymentMethod(ctx, customer.ID, in.PaymentMethodID); err != nil {
		return nil, err
	}
	if err := s.billing.SetDefaultPaymentMethod(ctx, customer.ID, in.PaymentMethodID); err != nil {
		return nil, err
	}

	product, err := s.billing.CreateProduct(ctx, selected.ProductName)
	if err != nil {
		return nil, err
	}
	price, err := s.billing.CreatePrice(ctx, product.ID, selected.MinorUnits(), selected.Currency, string(selected.Interval))
	if err != nil {
		return nil, err
	}

	sub, err := s.billing.CreateSubscription(ctx, customer.ID, price.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		zap.String("customer_id", customer.ID),
		zap.String("subscription_id", sub.ID),
		zap.String("plan_key", selected.Key),
		zap.String("status", sub.Status))

	// Fast path: the creation response already expanded a usable intent.
	if inv := sub.LatestInvoice; inv != nil && inv.PaymentIntent != nil &&
		inv.PaymentIntent.ID != "" && inv.PaymentIntent.ClientSecret != "" {
		return &CreateSubscriptionResult{
			CustomerID:      customer.ID,
			SubscriptionID:  sub.ID,
			PaymentIntentID: inv.PaymentIntent.ID,
			ClientSecret:    inv.PaymentIntent.ClientSecret,
			Status:          sub.Status,
		}, nil
	}

	res, err := s.resolver.Resolve(ctx, sub.ID, in.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if res.PaymentIntentID == "" {
		return nil, &ResolutionExhaustedError{SubscriptionID: sub.ID, Resolution: res}
	}

	intent, err := s.billing.GetPaymentIntent(ctx, res.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: payment intent %s has status %s",
			domainErrors.ErrMissingClientSecret, intent.ID, intent.Status)
	}

	return &CreateSubscriptionResult{
		CustomerID:      customer.ID,
		SubscriptionID:  sub.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          sub.Status,
	}, nil
}
