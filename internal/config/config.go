// Package config loads and validates service configuration from a YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vigiasalud/alert-ingestor/internal/collector"
)

const (
	defaultServerPort      = 8060
	defaultServerTimeout   = 30 * time.Second
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultRedisAddress    = "localhost:6379"
	defaultMaxConcurrent   = 8
	defaultSourceTimeout   = 2 * time.Minute
	defaultRunInterval     = time.Hour
)

type Config struct {
	Debug    bool           `env:"APP_DEBUG" yaml:"debug"`
	LogLevel string         `env:"LOG_LEVEL" yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ingest   IngestConfig   `yaml:"ingest"`

	// Sources lists the selector-driven sources registered for each run.
	Sources []collector.HTMLConfig `yaml:"sources"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig holds Redis connection configuration for run event publishing.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"` // Feature flag for event publishing
}

// IngestConfig controls the run fan-out.
type IngestConfig struct {
	MaxConcurrent int           `env:"INGEST_MAX_CONCURRENT" yaml:"max_concurrent"`
	SourceTimeout time.Duration `env:"INGEST_SOURCE_TIMEOUT" yaml:"source_timeout"`
	RunInterval   time.Duration `env:"INGEST_RUN_INTERVAL"   yaml:"run_interval"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Ingest.MaxConcurrent <= 0 {
		return errors.New("ingest.max_concurrent must be positive")
	}
	if c.Ingest.SourceTimeout <= 0 {
		return errors.New("ingest.source_timeout must be positive")
	}
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if src.URL == "" {
			return fmt.Errorf("sources[%d].url is required", i)
		}
	}
	return nil
}

// Load reads the config file at path, applies defaults and env overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.setDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultServerTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultServerTimeout
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDatabasePort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if c.Redis.Address == "" {
		c.Redis.Address = defaultRedisAddress
	}
	if c.Ingest.MaxConcurrent == 0 {
		c.Ingest.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Ingest.SourceTimeout == 0 {
		c.Ingest.SourceTimeout = defaultSourceTimeout
	}
	if c.Ingest.RunInterval == 0 {
		c.Ingest.RunInterval = defaultRunInterval
	}
}
