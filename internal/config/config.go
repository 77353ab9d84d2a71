// Package config loads energymix settings from a YAML file, ENERGYMIX_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort      = errors.New("invalid server port")
	ErrInvalidSource    = errors.New("data source must be csv or sqlite")
	ErrMissingRecords   = errors.New("csv source requires data.records_path")
	ErrMissingDatabase  = errors.New("sqlite source requires data.database_path")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("log format must be text or json")
)

// Data sources.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

const (
	defaultPort = 8080
	defaultHost = "0.0.0.0"
	maxPort     = 65535
)

// Config holds all energymix configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr is host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// DataConfig says where the record store comes from.
type DataConfig struct {
	Source             string `mapstructure:"source"`
	RecordsPath        string `mapstructure:"records_path"`
	ClassificationPath string `mapstructure:"classification_path"`
	DatabasePath       string `mapstructure:"database_path"`
}

// EngineConfig holds query defaults.
type EngineConfig struct {
	// StrictClassification makes category partitions fail on unclassified
	// countries instead of excluding them.
	StrictClassification bool `mapstructure:"strict_classification"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty path searches ./energymix.yaml and ./config/energymix.yaml.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("energymix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ENERGYMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("data.source", SourceCSV)
	v.SetDefault("data.records_path", "")
	v.SetDefault("data.classification_path", "")
	v.SetDefault("data.database_path", "energymix.db")

	v.SetDefault("engine.strict_classification", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks the settings needed to serve or query.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.RecordsPath == "" {
			return ErrMissingRecords
		}
	case SourceSQLite:
		if c.Data.DatabasePath == "" {
			return ErrMissingDatabase
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, c.Data.Source)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}
