package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	ClientURL   string `yaml:"client_url"`

	Stripe StripeConfig `yaml:"stripe"`
	PayPal PayPalConfig `yaml:"paypal"`
	Media  MediaConfig  `yaml:"media"`

	// Plans maps each recognized plan key to its recurring charge.
	Plans map[string]PlanConfig `yaml:"plans"`

	ProviderTimeoutSeconds int `yaml:"provider_timeout_seconds"`
}

type StripeConfig struct {
	// SecretKey is taken from STRIPE_SECRET_KEY; the yaml field exists for
	// local development only.
	SecretKey string `yaml:"secret_key"`
}

type PayPalConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Environment selects the PayPal API host: "sandbox" or "live".
	Environment string `yaml:"environment"`
}

type MediaConfig struct {
	// AllowedHosts is the proxy allow-list. An empty list disables the proxy.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

type PlanConfig struct {
	ProductName string `yaml:"product_name"`
	Amount      Money  `yaml:"amount"`
	Currency    string `yaml:"currency"`
	Interval    string `yaml:"interval"`
}

// Money is a decimal amount in major currency units, parsed exactly from the
// yaml scalar so "14.99" never goes through a float.
type Money struct {
	decimal.Decimal
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", value.Value, err)
	}
	m.Decimal = d
	return nil
}

func (s ServiceConfig) ProviderTimeout() time.Duration {
	return time.Duration(s.ProviderTimeoutSeconds) * time.Second
}
