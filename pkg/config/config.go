package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Validator is implemented by every loadable configuration.
type Validator interface {
	Validate() error
}

// Config is the full service configuration.
type Config struct {
	Service     ServiceConfig     `koanf:"service"`
	Database    DatabaseConfig    `koanf:"database"`
	Auth        AuthConfig        `koanf:"auth"`
	TMDB        TMDBConfig        `koanf:"tmdb"`
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`
	Events      EventsConfig      `koanf:"events"`
	Logger      LoggerConfig      `koanf:"logger"`
	Pagination  PaginationConfig  `koanf:"pagination"`
}

// ServiceConfig contains service-specific metadata.
type ServiceConfig struct {
	Name            string        `koanf:"name"`
	Version         string        `koanf:"version"`
	Environment     string        `koanf:"environment"` // dev, staging, production
	Debug           bool          `koanf:"debug"`
	Port            int           `koanf:"port"`
	GRPCPort        int           `koanf:"grpc_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // sqlite or postgres
	DSN             string        `koanf:"dsn"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxConnections  int           `koanf:"max_connections"`
	MinConnections  int           `koanf:"min_connections"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	SecretKey         string        `koanf:"secret_key"`
	Algorithm         string        `koanf:"algorithm"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
}

// TMDBConfig configures the film catalog client.
type TMDBConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	ImageBaseURL string        `koanf:"image_base_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

// MusicBrainzConfig configures the music catalog client.
type MusicBrainzConfig struct {
	BaseURL         string        `koanf:"base_url"`
	CoverArtBaseURL string        `koanf:"cover_art_base_url"`
	UserAgent       string        `koanf:"user_agent"`
	RateLimitDelay  time.Duration `koanf:"rate_limit_delay"`
	Timeout         time.Duration `koanf:"timeout"`
}

// EventsConfig selects where domain events are forwarded.
type EventsConfig struct {
	Broker       string   `koanf:"broker"` // none, nats, kafka
	NATSURL      string   `koanf:"nats_url"`
	NATSStream   string   `koanf:"nats_stream"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level       string `koanf:"level"`  // debug, info, warn, error
	Format      string `koanf:"format"` // json, console
	Development bool   `koanf:"development"`
	OutputPath  string `koanf:"output_path"` // stdout, stderr, or file path
}

// PaginationConfig contains list endpoint limits.
type PaginationConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// Manager handles configuration loading and parsing.
type Manager struct {
	k           *koanf.Koanf
	serviceName string
	configPaths []string
	dotenvPaths []string
}

// NewManager creates a new configuration manager.
func NewManager(serviceName string) *Manager {
	return &Manager{
		k:           koanf.New("."),
		serviceName: serviceName,
		configPaths: getDefaultConfigPaths(serviceName),
		dotenvPaths: []string{".env"},
	}
}

// WithConfigPaths replaces the config file search list.
func (m *Manager) WithConfigPaths(paths ...string) *Manager {
	m.configPaths = paths
	return m
}

// WithDotenv replaces the .env files loaded before reading the environment.
func (m *Manager) WithDotenv(paths ...string) *Manager {
	m.dotenvPaths = paths
	return m
}

// LoadConfig loads configuration from all sources.
func (m *Manager) LoadConfig(cfg Validator) error {
	// 1. Load defaults from struct tags
	if err := m.k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load from config files (in order of precedence)
	for _, path := range m.configPaths {
		if err := m.loadFromFile(path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	// 3. Populate the process environment from .env files, never overriding
	for _, path := range m.dotenvPaths {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 4. Load from environment variables
	if err := m.loadFromEnv(); err != nil {
		return fmt.Errorf("failed to load from environment: %w", err)
	}

	// 5. Unmarshal into the config struct
	if err := m.k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// GetString returns a string value for the given key.
func (m *Manager) GetString(key string) string {
	return m.k.String(key)
}

// loadFromFile loads configuration from a file.
func (m *Manager) loadFromFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	return m.k.Load(file.Provider(path), parser)
}

// legacyEnv maps the unprefixed variable names of earlier deployments.
var legacyEnv = map[string]string{
	"DEBUG":                  "service.debug",
	"DATABASE_URL":           "database.dsn",
	"SECRET_KEY":             "auth.secret_key",
	"TMDB_API_KEY":           "tmdb.api_key",
	"TMDB_BASE_URL":          "tmdb.base_url",
	"MUSICBRAINZ_BASE_URL":   "musicbrainz.base_url",
	"MUSICBRAINZ_USER_AGENT": "musicbrainz.user_agent",
}

// loadFromEnv loads legacy names first, then prefixed variables, which win.
//
// WRONGOPINIONS_DATABASE_MAX_CONNECTIONS maps to database.max_connections:
// the first segment after the prefix is the section, the rest is the key.
func (m *Manager) loadFromEnv() error {
	if err := m.k.Load(env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return err
	}

	prefix := strings.ToUpper(m.serviceName) + "_"
	return m.k.Load(env.Provider(prefix, ".", func(s string) string {
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(s, prefix)), "_")
		if !ok {
			return ""
		}
		return section + "." + key
	}), nil)
}

// getDefaultConfigPaths returns the default config paths to check.
func getDefaultConfigPaths(serviceName string) []string {
	paths := []string{
		"config.yaml",
		"config.json",
		fmt.Sprintf("configs/%s.yaml", serviceName),
		fmt.Sprintf("configs/%s.json", serviceName),
		fmt.Sprintf("configs/%s.%s.yaml", serviceName, getEnvironment()),
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		paths = append([]string{configPath}, paths...)
	}

	return paths
}

// getEnvironment returns the current environment.
func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}

// weakSecrets are placeholder values rejected outside debug mode.
var weakSecrets = map[string]bool{
	"secret":                               true,
	"changeme":                             true,
	"change-me":                            true,
	"your-secret-key":                      true,
	"your-secret-key-change-in-production": true,
	"development-secret-change-in-production": true,
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return errors.New("service name is required")
	}
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port: %d", c.Service.Port)
	}
	if c.Service.GRPCPort < 0 || c.Service.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Service.GRPCPort)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Auth.SecretKey == "" {
		return errors.New("secret key is required (set WRONGOPINIONS_AUTH_SECRET_KEY or SECRET_KEY)")
	}
	if !c.Service.Debug {
		if len(c.Auth.SecretKey) < MinSecretKeyLength {
			return fmt.Errorf("secret key must be at least %d characters", MinSecretKeyLength)
		}
		if weakSecrets[strings.ToLower(c.Auth.SecretKey)] {
			return errors.New("secret key is a known placeholder value")
		}
	}
	if c.Auth.AccessTokenExpire < time.Minute {
		return errors.New("access token expiry must be at least 1 minute")
	}
	if c.MusicBrainz.RateLimitDelay < time.Second {
		return errors.New("musicbrainz rate limit delay must be at least 1s")
	}
	switch c.Events.Broker {
	case BrokerNone, BrokerNATS, BrokerKafka:
	default:
		return fmt.Errorf("unsupported events broker: %q", c.Events.Broker)
	}
	return nil
}

// Warnings returns non-fatal configuration problems worth logging at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.TMDB.APIKey == "" {
		warnings = append(warnings, "TMDB API key is not set; film lookups will fail")
	}
	if strings.Contains(c.MusicBrainz.UserAgent, "example.com") {
		warnings = append(warnings, "MusicBrainz user agent still uses the example contact address")
	}
	if c.Service.Debug {
		warnings = append(warnings, "debug mode is enabled")
	}
	return warnings
}

// GetDefaults returns default configuration values.
func GetDefaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:            DefaultServiceName,
			Environment:     "dev",
			Port:            DefaultHTTPPort,
			GRPCPort:        DefaultGRPCPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Host:            "localhost",
			Port:            DefaultPostgresPort,
			User:            "wrongopinions",
			Name:            "wrongopinions",
			SSLMode:         "disable",
			MaxConnections:  DefaultMaxConnections,
			MinConnections:  DefaultMinConnections,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: DefaultMaxConnIdleTime,
		},
		Auth: AuthConfig{
			Algorithm:         "HS256",
			AccessTokenExpire: DefaultAccessTokenDuration,
		},
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      DefaultUpstreamTimeout,
		},
		MusicBrainz: MusicBrainzConfig{
			BaseURL:         "https://musicbrainz.org/ws/2",
			CoverArtBaseURL: "https://coverartarchive.org",
			UserAgent:       "WrongOpinions/1.0 (contact@example.com)",
			RateLimitDelay:  time.Second,
			Timeout:         DefaultUpstreamTimeout,
		},
		Events: EventsConfig{
			Broker:       BrokerNone,
			NATSURL:      "nats://localhost:4222",
			NATSStream:   "WRONGOPINIONS_EVENTS",
			KafkaBrokers: []string{"localhost:9092"},
			KafkaTopic:   "wrongopinions.events",
		},
		Logger: LoggerConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
		Pagination: PaginationConfig{
			DefaultPageSize: DefaultPageSize,
			MaxPageSize:     MaxPageSize,
		},
	}
}
