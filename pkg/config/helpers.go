package config

import (
	"fmt"
	"os"
)

// Load reads the service configuration from defaults, files, .env and the
// environment.
func Load() (*Config, error) {
	cfg := GetDefaults()
	if err := NewManager(DefaultServiceName).LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad loads config and panics on error (for main functions)
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load %s config: %v", DefaultServiceName, err))
	}
	return cfg
}

// GetServiceVersion returns the service version from config or environment
func GetServiceVersion(cfg *ServiceConfig) string {
	if cfg.Version != "" {
		return cfg.Version
	}
	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// IsProduction returns true if running in production environment
func IsProduction(cfg *ServiceConfig) bool {
	return cfg.Environment == "production" || cfg.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func IsDevelopment(cfg *ServiceConfig) bool {
	return cfg.Environment == "development" || cfg.Environment == "dev"
}

// GetListenAddress returns the formatted listen address for HTTP server
func GetListenAddress(cfg *ServiceConfig) string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// GetGRPCListenAddress returns the formatted listen address for gRPC server
func GetGRPCListenAddress(cfg *ServiceConfig) string {
	return fmt.Sprintf(":%d", cfg.GRPCPort)
}

// SQLitePath returns the database file, DefaultSQLitePath when DSN is unset.
func (d DatabaseConfig) SQLitePath() string {
	if d.DSN != "" {
		return d.DSN
	}
	return DefaultSQLitePath
}

// PostgresDSN builds a libpq connection string when no explicit DSN is set.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
