package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingora/payment-service/internal/config"
)

const testYAML = `
service:
  name: payment
  environment: test
  client_url: http://localhost:3000
  plans:
    monthly:
      product_name: Premium Monthly
      amount: "14.99"
      currency: usd
      interval: month
server:
  http:
    host: 127.0.0.1
    port: 9090
log:
  level: debug
  format: console
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses plans and server settings", func(t *testing.T) {
		writeConfig(t, testYAML)
		t.Setenv("STRIPE_SECRET_KEY", "")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "payment", cfg.Service.Name)
		assert.Equal(t, 9090, cfg.Server.HTTP.Port)

		monthly, ok := cfg.Service.Plans["monthly"]
		require.True(t, ok)
		assert.Equal(t, "14.99", monthly.Amount.String())
		assert.Equal(t, "month", monthly.Interval)
	})

	t.Run("secrets come from the environment", func(t *testing.T) {
		writeConfig(t, testYAML)
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("PAYPAL_CLIENT_ID", "pp-id")
		t.Setenv("PAYPAL_CLIENT_SECRET", "pp-secret")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "sk_test_123", cfg.Service.Stripe.SecretKey)
		assert.Equal(t, "pp-id", cfg.Service.PayPal.ClientID)
		assert.Equal(t, "pp-secret", cfg.Service.PayPal.ClientSecret)
	})

	t.Run("applies defaults", func(t *testing.T) {
		writeConfig(t, testYAML)

		cfg, err := config.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, cfg.Service.ProviderTimeout())
		assert.Equal(t, "sandbox", cfg.Service.PayPal.Environment)
	})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		writeConfig(t, `
service:
  plans:
    monthly:
      amount: "not-a-number"
`)
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})
}
