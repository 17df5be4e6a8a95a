package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/pkg/enums"
)

const (
	EnvPrefix = "MINIMART"

	EnvAppEnv            = "MINIMART_APP_ENV"
	EnvLogLevel          = "MINIMART_LOG_LEVEL"
	EnvLogWarnStack      = "MINIMART_LOG_WARN_STACK"
	EnvLogFormat         = "MINIMART_LOG_FORMAT"
	EnvShippingSurcharge = "MINIMART_CHECKOUT_SHIPPING_SURCHARGE"
	EnvStockPolicy       = "MINIMART_CHECKOUT_STOCK_POLICY"
	EnvClockOverride     = "MINIMART_CHECKOUT_CLOCK_OVERRIDE"
	EnvCatalogFile       = "MINIMART_CATALOG_FILE"
	EnvCustomerName      = "MINIMART_CUSTOMER_NAME"
	EnvCustomerBalance   = "MINIMART_CUSTOMER_BALANCE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
	Customer CustomerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MINIMART_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"MINIMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MINIMART_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"MINIMART_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Format returns the parsed log format; validate has already rejected unknown values.
func (a AppConfig) Format() enums.LogFormat {
	format, err := enums.ParseLogFormat(strings.ToLower(strings.TrimSpace(a.LogFormat)))
	if err != nil {
		return enums.LogFormatJSON
	}
	return format
}

type CheckoutConfig struct {
	ShippingSurcharge decimal.Decimal `envconfig:"MINIMART_CHECKOUT_SHIPPING_SURCHARGE" default:"50"`
	StockPolicy       string          `envconfig:"MINIMART_CHECKOUT_STOCK_POLICY" default:"retain"`
	// ClockOverride pins the checkout evaluation time (RFC3339). Empty means wall clock.
	ClockOverride string `envconfig:"MINIMART_CHECKOUT_CLOCK_OVERRIDE"`
}

// Policy returns the parsed stock policy.
func (c CheckoutConfig) Policy() enums.StockPolicy {
	policy, err := enums.ParseStockPolicy(strings.ToLower(strings.TrimSpace(c.StockPolicy)))
	if err != nil {
		return enums.StockPolicyRetain
	}
	return policy
}

// Now returns the pinned clock value when configured, otherwise fallback().
func (c CheckoutConfig) Now(fallback func() time.Time) time.Time {
	if c.ClockOverride == "" {
		return fallback()
	}
	at, err := time.Parse(time.RFC3339, c.ClockOverride)
	if err != nil {
		return fallback()
	}
	return at
}

type CatalogConfig struct {
	File string `envconfig:"MINIMART_CATALOG_FILE"`
}

type CustomerConfig struct {
	Name    string          `envconfig:"MINIMART_CUSTOMER_NAME" default:"Mohamed"`
	Balance decimal.Decimal `envconfig:"MINIMART_CUSTOMER_BALANCE" default:"4500"`
}

func (c *Config) validate() error {
	if _, err := enums.ParseLogFormat(strings.ToLower(strings.TrimSpace(c.App.LogFormat))); err != nil {
		return fmt.Errorf("%s: %w", EnvLogFormat, err)
	}
	if c.Checkout.ShippingSurcharge.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvShippingSurcharge)
	}
	if _, err := enums.ParseStockPolicy(strings.ToLower(strings.TrimSpace(c.Checkout.StockPolicy))); err != nil {
		return fmt.Errorf("%s: %w", EnvStockPolicy, err)
	}
	if c.Checkout.ClockOverride != "" {
		if _, err := time.Parse(time.RFC3339, c.Checkout.ClockOverride); err != nil {
			return fmt.Errorf("%s must be RFC3339: %w", EnvClockOverride, err)
		}
	}
	if strings.TrimSpace(c.Customer.Name) == "" {
		return fmt.Errorf("%s is required", EnvCustomerName)
	}
	return nil
}
