// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Exchanges ExchangesConfig `mapstructure:"exchanges"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// RedisConfig holds connection settings for the quote/trading-info cache
// and the opportunity publisher. An empty address disables Redis and the
// service falls back to the in-process cache.
type RedisConfig struct {
	Addr               string `mapstructure:"addr"`
	Password           string `mapstructure:"password"`
	DB                 int    `mapstructure:"db"`
	OpportunityChannel string `mapstructure:"opportunity_channel"`
}

// PostgresConfig holds the coin whitelist/blacklist store connection.
// An empty DSN disables list filtering.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CacheConfig holds TTLs and the bulk-fetch threshold for the quote cache.
type CacheConfig struct {
	QuoteTTL       time.Duration `mapstructure:"quote_ttl"`
	TradingInfoTTL time.Duration `mapstructure:"trading_info_ttl"`
	BulkThreshold  int           `mapstructure:"bulk_threshold"`
}

// RegistryConfig holds exchange client lifecycle settings.
type RegistryConfig struct {
	FailureCooldown time.Duration `mapstructure:"failure_cooldown"`
}

// VenueConfig holds per-venue API credentials and limits. Credentials are
// only required by trading-info providers that hit signed endpoints.
type VenueConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	APISecret         string        `mapstructure:"api_secret"`
	Passphrase        string        `mapstructure:"passphrase"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// ExchangesConfig holds per-venue settings keyed by exchange identifier.
type ExchangesConfig struct {
	MEXC   VenueConfig `mapstructure:"mexc"`
	GateIO VenueConfig `mapstructure:"gateio"`
	OKX    VenueConfig `mapstructure:"okx"`
	KuCoin VenueConfig `mapstructure:"kucoin"`
	Bybit  VenueConfig `mapstructure:"bybit"`
	Bitget VenueConfig `mapstructure:"bitget"`
}

// ScannerConfig holds the periodic arbitrage scan settings.
type ScannerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Interval         time.Duration `mapstructure:"interval"`
	Exchanges        []string      `mapstructure:"exchanges"` // empty = all known
	Pairs            []string      `mapstructure:"pairs"`     // empty = all available
	MinVolume        float64       `mapstructure:"min_volume"`
	MinProfitPercent float64       `mapstructure:"min_profit_percent"`
	MaxProfitPercent float64       `mapstructure:"max_profit_percent"`
}

// MinVolumeDecimal returns the minimum volume as decimal.Decimal.
func (c *ScannerConfig) MinVolumeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinVolume)
}

// MinProfitDecimal returns the lower profit bound as decimal.Decimal.
func (c *ScannerConfig) MinProfitDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPercent)
}

// MaxProfitDecimal returns the upper profit bound as decimal.Decimal.
func (c *ScannerConfig) MaxProfitDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxProfitPercent)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"` // zipkin | otlp | stdout
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ZipkinURL      string `mapstructure:"zipkin_url"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Config file is optional, env vars may carry everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "CB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "CB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "CB_LOG_LEVEL", "LOG_LEVEL")

	// Stores
	v.BindEnv("redis.addr", "CB_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("redis.password", "CB_REDIS_PASSWORD", "REDIS_PASSWORD")
	v.BindEnv("postgres.dsn", "CB_POSTGRES_DSN", "DATABASE_URL")

	// Venue credentials
	v.BindEnv("exchanges.mexc.api_key", "CB_MEXC_API_KEY")
	v.BindEnv("exchanges.mexc.api_secret", "CB_MEXC_API_SECRET")
	v.BindEnv("exchanges.gateio.api_key", "CB_GATEIO_API_KEY")
	v.BindEnv("exchanges.gateio.api_secret", "CB_GATEIO_API_SECRET")
	v.BindEnv("exchanges.okx.api_key", "CB_OKX_API_KEY")
	v.BindEnv("exchanges.okx.api_secret", "CB_OKX_API_SECRET")
	v.BindEnv("exchanges.okx.passphrase", "CB_OKX_PASSPHRASE")
	v.BindEnv("exchanges.bybit.api_key", "CB_BYBIT_API_KEY")
	v.BindEnv("exchanges.bybit.api_secret", "CB_BYBIT_API_SECRET")

	// Scanner
	v.BindEnv("scanner.enabled", "CB_SCANNER_ENABLED")
	v.BindEnv("scanner.interval", "CB_SCANNER_INTERVAL")
	v.BindEnv("scanner.min_profit_percent", "CB_MIN_PROFIT_PERCENT")
	v.BindEnv("scanner.max_profit_percent", "CB_MAX_PROFIT_PERCENT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "CB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "CB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "CB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "cryptobridge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Store defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.opportunity_channel", "arbitrage.opportunities")

	// Cache defaults
	v.SetDefault("cache.quote_ttl", "300s")
	v.SetDefault("cache.trading_info_ttl", "24h")
	v.SetDefault("cache.bulk_threshold", 40)

	// Registry defaults
	v.SetDefault("registry.failure_cooldown", "60s")

	// Venue defaults
	for _, venue := range []string{"mexc", "gateio", "okx", "kucoin", "bybit", "bitget"} {
		v.SetDefault("exchanges."+venue+".timeout", "10s")
		v.SetDefault("exchanges."+venue+".requests_per_minute", 600)
	}

	// Scanner defaults
	v.SetDefault("scanner.enabled", true)
	v.SetDefault("scanner.interval", "60s")
	v.SetDefault("scanner.min_volume", 0)
	v.SetDefault("scanner.min_profit_percent", 0.5)
	v.SetDefault("scanner.max_profit_percent", 50)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "cryptobridge")
	v.SetDefault("telemetry.trace_exporter", "stdout")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Cache.BulkThreshold <= 0 {
		return fmt.Errorf("cache.bulk_threshold must be positive, got %d", c.Cache.BulkThreshold)
	}
	if c.Cache.QuoteTTL <= 0 {
		return fmt.Errorf("cache.quote_ttl must be positive, got %s", c.Cache.QuoteTTL)
	}
	if c.Registry.FailureCooldown <= 0 {
		return fmt.Errorf("registry.failure_cooldown must be positive, got %s", c.Registry.FailureCooldown)
	}
	if c.Scanner.Enabled && c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner.interval must be positive, got %s", c.Scanner.Interval)
	}
	if c.Scanner.MinProfitPercent > c.Scanner.MaxProfitPercent {
		return fmt.Errorf("scanner.min_profit_percent %v exceeds max_profit_percent %v",
			c.Scanner.MinProfitPercent, c.Scanner.MaxProfitPercent)
	}
	return nil
}
