package stripe

import (
	"context"
	"errors"
	"net/http"
	"time"

	stripesdk "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/lingora/payment-service/internal/domain/billing"
)

// Client implements billing.Client against the Stripe API. Each operation is
// a single round trip with a bounded timeout; the per-call context still
// applies on top of it.
type Client struct {
	api    *client.API
	logger *zap.Logger
}

func New(secretKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backends := stripesdk.NewBackends(&http.Client{Timeout: timeout})
	return &Client{
		api:    client.New(secretKey, backends),
		logger: logger,
	}
}

func (c *Client) CreateCustomer(ctx context.Context, email, name string) (*billing.Customer, error) {
	params := &stripesdk.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripesdk.String(email)
	}
	if name != "" {
		params.Name = stripesdk.String(name)
	}

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return nil, providerError("create customer", err)
	}
	return &billing.Customer{ID: cust.ID, Email: cust.Email}, nil
}

func (c *Client) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripesdk.PaymentMethodAttachParams{
		Customer: stripesdk.String(customerID),
	}
	params.Context = ctx

	if _, err := c.api.PaymentMethods.Attach(paymentMethodID, params); err != nil {
		return providerError("attach payment method", err)
	}
	return nil
}

func (c *Client) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripesdk.CustomerParams{
		InvoiceSettings: &stripesdk.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripesdk.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := c.api.Customers.Update(customerID, params); err != nil {
		return providerError("set default payment method", err)
	}
	return nil
}

func (c *Client) CreateProduct(ctx context.Context, name string) (*billing.Product, error) {
	params := &stripesdk.ProductParams{
		Name: stripesdk.String(name),
	}
	params.Context = ctx

	prod, err := c.api.Products.New(params)
	if err != nil {
		return nil, providerError("create product", err)
	}
	return &billing.Product{ID: prod.ID, Name: prod.Name}, nil
}

func (c *Client) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (*billing.Price, error) {
	params := &stripesdk.PriceParams{
		Product:    stripesdk.String(productID),
		UnitAmount: stripesdk.Int64(unitAmount),
		Currency:   stripesdk.String(currency),
		Recurring: &stripesdk.PriceRecurringParams{
			Interval: stripesdk.String(interval),
		},
	}
	params.Context = ctx

	price, err := c.api.Prices.New(params)
	if err != nil {
		return nil, providerError("create price", err)
	}
	out := &billing.Price{ID: price.ID, UnitAmount: price.UnitAmount, Currency: string(price.Currency)}
	if price.Recurring != nil {
		out.Interval = string(price.Recurring.Interval)
	}
	return out, nil
}

// CreateSubscription uses default_incomplete payment behavior so creation
// never forces an immediate charge; the first invoice's payment intent is
// what the browser confirms.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string) (*billing.Subscription, error) {
	params := &stripesdk.SubscriptionParams{
		Customer: stripesdk.String(customerID),
		Items: []*stripesdk.SubscriptionItemsParams{
			{Price: stripesdk.String(priceID)},
		},
		PaymentBehavior: stripesdk.String("default_incomplete"),
		PaymentSettings: &stripesdk.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripesdk.String("on_subscription"),
		},
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return nil, providerError("create subscription", err)
	}
	return toSubscription(sub), nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	params := &stripesdk.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, providerError("get subscription", err)
	}
	return toSubscription(sub), nil
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	params := &stripesdk.InvoiceParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	inv, err := c.api.Invoices.Get(invoiceID, params)
	if err != nil {
		return nil, providerError("get invoice", err)
	}
	return toInvoice(inv), nil
}

func (c *Client) FinalizeInvoice(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	params := &stripesdk.InvoiceFinalizeInvoiceParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	inv, err := c.api.Invoices.FinalizeInvoice(invoiceID, params)
	if err != nil {
		return nil, providerError("finalize invoice", err)
	}
	return toInvoice(inv), nil
}

func (c *Client) PayInvoice(ctx context.Context, invoiceID, paymentMethodID string) (*billing.Invoice, error) {
	params := &stripesdk.InvoicePayParams{
		PaymentMethod: stripesdk.String(paymentMethodID),
	}
	params.Context = ctx
	params.AddExpand("payment_intent")

	inv, err := c.api.Invoices.Pay(invoiceID, params)
	if err != nil {
		return nil, providerError("pay invoice", err)
	}
	return toInvoice(inv), nil
}

func (c *Client) ListSubscriptionInvoices(ctx context.Context, subscriptionID string, limit int64) ([]*billing.Invoice, error) {
	params := &stripesdk.InvoiceListParams{
		Subscription: stripesdk.String(subscriptionID),
	}
	params.Context = ctx
	params.Limit = stripesdk.Int64(limit)
	params.AddExpand("data.payment_intent")

	iter := c.api.Invoices.List(params)
	var invoices []*billing.Invoice
	for iter.Next() {
		invoices = append(invoices, toInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, providerError("list subscription invoices", err)
	}
	return invoices, nil
}

func (c *Client) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*billing.PaymentIntent, error) {
	params := &stripesdk.PaymentIntentParams{}
	params.Context = ctx

	intent, err := c.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, providerError("get payment intent", err)
	}
	return toPaymentIntent(intent), nil
}

func toSubscription(sub *stripesdk.Subscription) *billing.Subscription {
	out := &billing.Subscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.LatestInvoice != nil {
		out.LatestInvoice = toInvoice(sub.LatestInvoice)
	}
	return out
}

func toInvoice(inv *stripesdk.Invoice) *billing.Invoice {
	out := &billing.Invoice{
		ID:     inv.ID,
		Status: string(inv.Status),
	}
	if inv.PaymentIntent != nil {
		out.PaymentIntent = toPaymentIntent(inv.PaymentIntent)
	}
	return out
}

func toPaymentIntent(intent *stripesdk.PaymentIntent) *billing.PaymentIntent {
	return &billing.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}
}

func providerError(op string, err error) error {
	var sErr *stripesdk.Error
	if errors.As(err, &sErr) {
		msg := sErr.Msg
		if msg == "" {
			msg = op + " failed"
		}
		return &billing.ProviderError{
			Code:    string(sErr.Code),
			Message: msg,
		}
	}
	return &billing.ProviderError{
		Code:    "provider_unreachable",
		Message: op + " failed",
		Details: err.Error(),
	}
}
