package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service ServiceConfig `yaml:"service"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// LoadConfig reads the YAML config named by CONFIG_PATH and overlays secret
// material from the environment. Secrets never live in the file. A local
// .env file is honored when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/payment.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Service.Stripe.SecretKey = v
	}
	if v := os.Getenv("PAYPAL_CLIENT_ID"); v != "" {
		c.Service.PayPal.ClientID = v
	}
	if v := os.Getenv("PAYPAL_CLIENT_SECRET"); v != "" {
		c.Service.PayPal.ClientSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Service.ProviderTimeoutSeconds <= 0 {
		c.Service.ProviderTimeoutSeconds = 10
	}
	if c.Service.PayPal.Environment == "" {
		c.Service.PayPal.Environment = "sandbox"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
}
