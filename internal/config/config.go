package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	// Upstream Gomanage instance. The dashboard is single-tenant against
	// this ERP, so service credentials have working defaults.
	GomanageBaseURL  string `env:"GOMANAGE_BASE_URL" envDefault:"http://buyled.clonico.es:8181"`
	GomanageUsername string `env:"GOMANAGE_USERNAME" envDefault:"distri"`
	GomanagePassword string `env:"GOMANAGE_PASSWORD" envDefault:"GOtmt%"`

	UpstreamTimeoutSeconds int `env:"GOMANAGE_TIMEOUT_SECONDS" envDefault:"15"`
	UpstreamRetries        int `env:"GOMANAGE_RETRIES" envDefault:"3"`

	SessionTTLSeconds  int `env:"SESSION_TTL_SECONDS" envDefault:"1800"`
	SessionIdleSeconds int `env:"SESSION_IDLE_SECONDS" envDefault:"1800"`

	// GraphQL collection paths are configuration because the upstream
	// schema nesting has drifted before. Dot-separated gjson paths.
	CustomersPath string `env:"GRAPHQL_CUSTOMERS_PATH" envDefault:"data.master_files.customers"`
	ProductsPath  string `env:"GRAPHQL_PRODUCTS_PATH" envDefault:"data.master_files.products"`
	OrdersPath    string `env:"GRAPHQL_ORDERS_PATH" envDefault:"data.commercial_documents.orders"`

	RateLimitPerMin      int    `env:"RELAY_RATE_LIMIT_PER_MIN" envDefault:"120"`
	SyncRunRetentionDays int    `env:"SYNC_RUN_RETENTION_DAYS" envDefault:"30"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) SessionIdleLimit() time.Duration {
	return time.Duration(c.SessionIdleSeconds) * time.Second
}

func (c *Config) SyncRunRetention() time.Duration {
	return time.Duration(c.SyncRunRetentionDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if !strings.HasPrefix(c.GomanageBaseURL, "http://") && !strings.HasPrefix(c.GomanageBaseURL, "https://") {
		return fmt.Errorf("GOMANAGE_BASE_URL must be an http(s) URL, got %q", c.GomanageBaseURL)
	}
	if c.UpstreamRetries < 1 {
		return fmt.Errorf("GOMANAGE_RETRIES must be at least 1")
	}
	if c.UpstreamTimeoutSeconds < 1 {
		return fmt.Errorf("GOMANAGE_TIMEOUT_SECONDS must be at least 1")
	}

	if isProduction {
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if strings.HasPrefix(c.GomanageBaseURL, "http://") {
			log.Warn().Msg("GOMANAGE_BASE_URL uses http:// in production: session cookies travel in cleartext")
		}
	}

	return nil
}

func Load() (*Config, error) {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
