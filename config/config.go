package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Catalog      CatalogConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
	Optimizer    OptimizerConfig
	Substitution SubstitutionConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds product catalog API configuration
type CatalogConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" is the only backend for now
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration, in requests per minute.
// PerIP guards the inbound HTTP surface (0 disables it); Catalog caps the
// outbound catalog client.
type RateLimitConfig struct {
	PerIP   int `mapstructure:"per_ip"`
	Catalog int `mapstructure:"catalog"`
}

// OptimizerConfig holds budget optimizer tuning
type OptimizerConfig struct {
	DPItemThreshold int  `mapstructure:"dp_item_threshold"`
	Debug           bool `mapstructure:"debug"`
}

// SubstitutionConfig holds substitution matcher tuning
type SubstitutionConfig struct {
	MinScoreImprovement float64 `mapstructure:"min_score_improvement"`
	MaxPriceIncrease    float64 `mapstructure:"max_price_increase"`
	MaxResults          int     `mapstructure:"max_results"`
	Debug               bool    `mapstructure:"debug"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/greenbasket/")

	v.SetEnvPrefix("GREENBASKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("catalog.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("catalog.user_agent", "GreenBasket/1.0")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 100)
	// Open Food Facts asks for at most 100 search requests per minute
	v.SetDefault("ratelimit.catalog", 100)

	v.SetDefault("optimizer.dp_item_threshold", 20)
	v.SetDefault("optimizer.debug", false)

	v.SetDefault("substitution.min_score_improvement", 0.1)
	v.SetDefault("substitution.max_price_increase", 0.2)
	v.SetDefault("substitution.max_results", 5)
	v.SetDefault("substitution.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required (set GREENBASKET_CATALOG_BASE_URL)")
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Catalog < 0 {
		return fmt.Errorf("rate limits must be non-negative, got per_ip: %d, catalog: %d",
			config.RateLimit.PerIP, config.RateLimit.Catalog)
	}

	if config.Substitution.MaxResults < 0 {
		return fmt.Errorf("substitution max results must be non-negative, got: %d", config.Substitution.MaxResults)
	}

	return nil
}
