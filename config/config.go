package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/simon020286/go-flow/logging"
)

type (
	// Config holds the settings of the flow editor service
	Config struct {
		LogLevel       string        `yaml:"log_level"`
		ConnectorsPath string        `yaml:"connectors_path"`
		SaveTimeout    time.Duration `yaml:"save_timeout"`
		Store          StoreConfig   `yaml:"store"`
		Server         ServerConfig  `yaml:"server"`
	}

	// StoreConfig selects and configures the persistence backend
	StoreConfig struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// ServerConfig configures the HTTP API
	ServerConfig struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	}
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"

	DefaultAPIHost     = "0.0.0.0"
	DefaultAPIPort     = 8080
	DefaultSaveTimeout = 10 * time.Second
	DefaultSQLiteDSN   = "file:flow.db"
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "flow"
	MaxTCPPort         = 65535
	MaxRedisDB         = 15

	EnvConnectorsPath = "FLOW_CONNECTORS_PATH"
)

var (
	ErrInvalidAPIPort     = errors.New("invalid API port")
	ErrInvalidDriver      = errors.New("invalid store driver")
	ErrMissingDSN         = errors.New("sqlite store requires a DSN")
	ErrMissingRedisAddr   = errors.New("redis store requires an address")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidSaveTimeout = errors.New("save timeout must be positive")
)

// NewDefaultConfig creates a configuration using the in-memory store
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		ConnectorsPath: DefaultConnectorsPath(),
		SaveTimeout:    DefaultSaveTimeout,
		Store: StoreConfig{
			Driver: DriverMemory,
			DSN:    DefaultSQLiteDSN,
			Addr:   DefaultRedisAddr,
			Prefix: DefaultRedisPrefix,
		},
		Server: ServerConfig{
			Host: DefaultAPIHost,
			Port: DefaultAPIPort,
		},
	}
}

// LoadFile reads a YAML service config on top of the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv overrides values from FLOW_* environment variables. Returns
// an error if any numeric variable cannot be parsed
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FLOW_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvConnectorsPath); v != "" {
		c.ConnectorsPath = v
	}
	if v := os.Getenv("FLOW_API_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("FLOW_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("FLOW_STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("FLOW_REDIS_ADDR"); v != "" {
		c.Store.Addr = v
	}
	if v := os.Getenv("FLOW_REDIS_PASSWORD"); v != "" {
		c.Store.Password = v
	}
	if v := os.Getenv("FLOW_REDIS_PREFIX"); v != "" {
		c.Store.Prefix = v
	}
	if v := os.Getenv("FLOW_SAVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FLOW_SAVE_TIMEOUT: %q", v)
		}
		c.SaveTimeout = d
	}

	if err := loadEnvInt("FLOW_API_PORT", &c.Server.Port, 0, MaxTCPPort); err != nil {
		return err
	}
	return loadEnvInt("FLOW_REDIS_DB", &c.Store.DB, -1, MaxRedisDB)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.Server.Port)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.SaveTimeout <= 0 {
		return ErrInvalidSaveTimeout
	}
	return c.Store.Validate()
}

// Validate checks the backend selection and its required settings
func (s *StoreConfig) Validate() error {
	switch s.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if s.DSN == "" {
			return ErrMissingDSN
		}
		return nil
	case DriverRedis:
		if s.Addr == "" {
			return ErrMissingRedisAddr
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, s.Driver)
	}
}

// Addr returns the host:port the HTTP API listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultConnectorsPath returns the directory scanned for custom connector
// definitions. The environment variable wins over ~/.go-flow/connectors
func DefaultConnectorsPath() string {
	if path := os.Getenv(EnvConnectorsPath); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./connectors"
	}
	return filepath.Join(homeDir, ".go-flow", "connectors")
}

// loadEnvInt reads key from the environment and sets *dst if the value is
// in the range (min, max]
func loadEnvInt(key string, dst *int, min, max int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v <= min || v > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, v, min+1, max)
	}
	*dst = v
	return nil
}
