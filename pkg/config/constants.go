package config

import "time"

const (
	// DefaultServiceName is also the environment variable prefix.
	DefaultServiceName = "wrongopinions"

	// Server ports.
	DefaultHTTPPort        = 8000
	DefaultGRPCPort        = 9090
	DefaultShutdownTimeout = 15 * time.Second

	// Database drivers.
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// Database defaults.
	DefaultSQLitePath      = "wrong_opinions.db"
	DefaultPostgresPort    = 5432
	DefaultMaxConnections  = 25
	DefaultMinConnections  = 5
	DefaultMaxConnIdleTime = 30 * time.Minute

	// Event brokers.
	BrokerNone  = "none"
	BrokerNATS  = "nats"
	BrokerKafka = "kafka"

	// Upstream defaults.
	DefaultUpstreamTimeout = 30 * time.Second

	// Auth defaults.
	DefaultAccessTokenDuration = 30 * time.Minute
	MinSecretKeyLength         = 32

	// Pagination defaults.
	DefaultPageSize = 20
	MaxPageSize     = 100
)
