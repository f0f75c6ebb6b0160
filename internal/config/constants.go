package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Health probe against the Gomanage landing page must stay fast: one
// attempt, short deadline.
const ProbeTimeout = 5 * time.Second

// Linear backoff base between upstream retry attempts (attempt * base).
const RetryBackoffBase = time.Second

// SessionKey used when a relay request does not name one.
const DefaultSessionKey = "default"
