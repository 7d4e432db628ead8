package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/lingora/payment-service/internal/domain/billing"
)

// Resolution is the outcome of a payment-intent resolution attempt. A
// resolution with an empty PaymentIntentID means every strategy was
// exhausted; the remaining fields are the diagnostics the caller folds into
// its error message.
type Resolution struct {
	PaymentIntentID     string
	InvoiceID           string
	InvoiceStatus       string
	InvoicePayAttempted bool
	InvoicePayError     string
}

// PaymentIntentResolver locates the payment intent behind a freshly created
// subscription. The provider's creation response does not always carry one:
// the first invoice may still need finalization or explicit collection. The
// resolver escalates through increasingly invasive strategies, each attempted
// only when the previous one yielded nothing, so it never finalizes or pays
// an invoice that already produced a usable intent.
type PaymentIntentResolver struct {
	billing billing.Client
	logger  *zap.Logger
}

func NewPaymentIntentResolver(billingClient billing.Client, logger *zap.Logger) *PaymentIntentResolver {
	return &PaymentIntentResolver{
		billing: billingClient,
		logger:  logger,
	}
}

// Resolve walks the subscription → invoice → payment-intent chain. Finalize
// and pay failures are recorded and swallowed: finalization races with the
// provider's own background job, and payment commonly fails for instruments
// that require 3-D Secure, both of which mean the client finishes the flow
// elsewhere. Failures of the read steps propagate immediately.
func (r *PaymentIntentResolver) Resolve(ctx context.Context, subscriptionID, paymentMethodID string) (*Resolution, error) {
	res := &Resolution{}

	// Strategy 1: re-fetch the subscription with the invoice and intent
	// expanded. Common case, no side effects.
	sub, err := r.billing.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if inv := sub.LatestInvoice; inv != nil {
		res.InvoiceID = inv.ID
		res.InvoiceStatus = inv.Status
		if intentID := intentIDOf(inv); intentID != "" {
			res.PaymentIntentID = intentID
			return res, nil
		}
	}

	if res.InvoiceID != "" {
		// Strategy 2: fetch the invoice directly. Some providers populate
		// the intent slightly after the subscription object is returned.
		inv, err := r.billing.GetInvoice(ctx, res.InvoiceID)
		if err != nil {
			return nil, err
		}
		res.InvoiceStatus = inv.Status
		if intentID := intentIDOf(inv); intentID != "" {
			res.PaymentIntentID = intentID
			return res, nil
		}

		// Strategy 3: a draft invoice has no intent yet; ask the provider to
		// finalize it. Failure here usually means the provider finalized it
		// first, which is not an error.
		if inv.Status == "" || inv.Status == billing.InvoiceStatusDraft {
			finalized, err := r.billing.FinalizeInvoice(ctx, res.InvoiceID)
			if err != nil {
				r.logger.Warn("invoice finalization failed, continuing",
					zap.String("subscription_id", subscriptionID),
					zap.String("invoice_id", res.InvoiceID),
					zap.Error(err))
			} else {
				res.InvoiceStatus = finalized.Status
				if intentID := intentIDOf(finalized); intentID != "" {
					res.PaymentIntentID = intentID
					return res, nil
				}
				inv, err = r.billing.GetInvoice(ctx, res.InvoiceID)
				if err != nil {
					return nil, err
				}
				res.InvoiceStatus = inv.Status
				if intentID := intentIDOf(inv); intentID != "" {
					res.PaymentIntentID = intentID
					return res, nil
				}
			}
		}

		// Strategy 4: collect the invoice explicitly with the supplied
		// payment method. A decline or a 3DS challenge lands here; record it
		// and keep going.
		res.InvoicePayAttempted = true
		paid, err := r.billing.PayInvoice(ctx, res.InvoiceID, paymentMethodID)
		if err != nil {
			res.InvoicePayError = err.Error()
			r.logger.Warn("invoice pay attempt failed, continuing",
				zap.String("subscription_id", subscriptionID),
				zap.String("invoice_id", res.InvoiceID),
				zap.Error(err))
		} else {
			res.InvoiceStatus = paid.Status
			if intentID := intentIDOf(paid); intentID != "" {
				res.PaymentIntentID = intentID
				return res, nil
			}
		}

		// Strategy 5: the pay attempt may have attached an intent without
		// returning it inline.
		inv, err = r.billing.GetInvoice(ctx, res.InvoiceID)
		if err != nil {
			return nil, err
		}
		res.InvoiceStatus = inv.Status
		if intentID := intentIDOf(inv); intentID != "" {
			res.PaymentIntentID = intentID
			return res, nil
		}
	}

	// Strategy 6: last resort, scan the subscription's recent invoices for
	// any that carries an intent.
	invoices, err := r.billing.ListSubscriptionInvoices(ctx, subscriptionID, 10)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if intentID := intentIDOf(inv); intentID != "" {
			res.InvoiceID = inv.ID
			res.InvoiceStatus = inv.Status
			res.PaymentIntentID = intentID
			return res, nil
		}
	}

	r.logger.Warn("payment intent resolution exhausted",
		zap.String("subscription_id", subscriptionID),
		zap.String("invoice_id", res.InvoiceID),
		zap.String("invoice_status", res.InvoiceStatus),
		zap.Bool("invoice_pay_attempted", res.InvoicePayAttempted))

	return res, nil
}

func intentIDOf(inv *billing.Invoice) string {
	if inv == nil || inv.PaymentIntent == nil {
		return ""
	}
	return inv.PaymentIntent.ID
}
