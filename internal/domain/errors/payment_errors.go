package errors

import "errors"

var (
	// ErrUnknownPlan indicates the requested plan key is not in the catalog
	ErrUnknownPlan = errors.New("unrecognized plan key")

	// ErrMissingPaymentMethod indicates the request carried no payment method reference
	ErrMissingPaymentMethod = errors.New("payment method reference is required")

	// ErrUnknownProvider indicates the URL named a payment provider this service does not support
	ErrUnknownProvider = errors.New("unsupported payment provider")

	// ErrEmptyPlanCatalog indicates no plan-to-price mapping is configured (deployment error)
	ErrEmptyPlanCatalog = errors.New("no payment plans are configured")

	// ErrMissingCredentials indicates the billing provider credentials are absent (deployment error)
	ErrMissingCredentials = errors.New("billing provider credentials are not configured")

	// ErrMissingClientSecret indicates a payment intent was resolved but its
	// client secret is empty, an unexpected provider state
	ErrMissingClientSecret = errors.New("payment intent has no client secret")
)
