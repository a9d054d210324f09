package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Storefront  StorefrontConfig
	Shipping    ShippingConfig
	LogLevel    string
}

type StorefrontConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	CSRF           CSRFConfig
	Breaker        BreakerConfig
}

type CSRFConfig struct {
	CookieName string
	HeaderName string
	TokenPath  string
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

type ShippingConfig struct {
	Timeout        time.Duration
	FallbackCost   decimal.Decimal
	MinWeightGrams int
}

// DefaultShippingConfig returns the shipping settings used when nothing is configured
func DefaultShippingConfig() ShippingConfig {
	return ShippingConfig{
		Timeout:        15 * time.Second,
		FallbackCost:   decimal.NewFromInt(300),
		MinWeightGrams: 100,
	}
}

// DefaultCSRFConfig matches the storefront's Django defaults
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		CookieName: "csrftoken",
		HeaderName: "X-CSRFToken",
		TokenPath:  "/api/get-csrf-token/",
	}
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8090")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("SHIPPING_TIMEOUT", "15s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	requestTimeout, err := durationValue("REQUEST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shippingTimeout, err := durationValue("SHIPPING_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	openTimeout, err := durationValue("BREAKER_OPEN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	maxFailures, err := cast.ToUint32E(getEnvOrViper("BREAKER_MAX_FAILURES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: %w", err)
	}
	minWeight, err := cast.ToIntE(getEnvOrViper("MIN_CART_WEIGHT_GRAMS", "100"))
	if err != nil || minWeight < 1 {
		return nil, fmt.Errorf("invalid MIN_CART_WEIGHT_GRAMS: %q", getEnvOrViper("MIN_CART_WEIGHT_GRAMS", "100"))
	}
	fallbackCost, err := decimal.NewFromString(getEnvOrViper("FALLBACK_SHIPPING_COST", "300"))
	if err != nil || !fallbackCost.IsPositive() {
		return nil, fmt.Errorf("invalid FALLBACK_SHIPPING_COST: %q", getEnvOrViper("FALLBACK_SHIPPING_COST", "300"))
	}

	csrf := DefaultCSRFConfig()

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8090"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Storefront: StorefrontConfig{
			BaseURL:        strings.TrimSuffix(getEnvOrViper("STOREFRONT_BASE_URL", ""), "/"),
			RequestTimeout: requestTimeout,
			CSRF: CSRFConfig{
				CookieName: getEnvOrViper("CSRF_COOKIE_NAME", csrf.CookieName),
				HeaderName: getEnvOrViper("CSRF_HEADER_NAME", csrf.HeaderName),
				TokenPath:  getEnvOrViper("CSRF_TOKEN_PATH", csrf.TokenPath),
			},
			Breaker: BreakerConfig{
				MaxFailures: maxFailures,
				OpenTimeout: openTimeout,
			},
		},
		Shipping: ShippingConfig{
			Timeout:        shippingTimeout,
			FallbackCost:   fallbackCost,
			MinWeightGrams: minWeight,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Storefront.BaseURL == "" {
		return nil, fmt.Errorf("STOREFRONT_BASE_URL is required")
	}

	return cfg, nil
}

func durationValue(key, defaultValue string) (time.Duration, error) {
	d, err := cast.ToDurationE(getEnvOrViper(key, defaultValue))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, getEnvOrViper(key, defaultValue))
	}
	return d, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
