package billing

import "context"

// Client defines the operations this service needs from the billing provider
// (Stripe in production). Every operation is a single round trip: no retry
// policy lives here, and any non-success response surfaces as a *ProviderError
// carrying the provider's own message. Escalation across calls belongs to the
// payment-intent resolver.
type Client interface {
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	CreateProduct(ctx context.Context, name string) (*Product, error)
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (*Price, error)

	// CreateSubscription creates the subscription with deferred payment
	// behavior and expands the latest invoice and its payment intent, so the
	// common case needs no further provider calls.
	CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	FinalizeInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	PayInvoice(ctx context.Context, invoiceID, paymentMethodID string) (*Invoice, error)
	ListSubscriptionInvoices(ctx context.Context, subscriptionID string, limit int64) ([]*Invoice, error)

	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)
}

// Customer is a billing-provider customer created fresh for each
// subscription request. This service never stores or reuses it.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Product represents the provider-side product for the selected plan.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Price is the recurring charge attached to a product.
type Price struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`
}

// Subscription is the recurring billing relationship. LatestInvoice is nil
// when the provider has not generated the first invoice yet.
type Subscription struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	LatestInvoice *Invoice `json:"latest_invoice,omitempty"`
}

// Invoice is the billable document for one billing cycle. PaymentIntent is
// nil until the provider has attached one, which may happen after the
// subscription-creation response is returned.
type Invoice struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PaymentIntent *PaymentIntent `json:"payment_intent,omitempty"`
}

// PaymentIntent carries the client secret the end user's browser needs to
// complete authentication and capture. The secret is single-use and is never
// logged.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"-"`
	Status       string `json:"status"`
}

// Invoice statuses the resolver cares about.
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusOpen  = "open"
	InvoiceStatusPaid  = "paid"
)

// ProviderError is any non-success response from the billing provider.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
