package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete engine configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	App       AppConfig       `yaml:"app"`
	Logging   LoggingConfig   `yaml:"logging"`
	Health    HealthConfig    `yaml:"health"`
	Security  SecurityConfig  `yaml:"security"`
	Database  DatabaseConfig  `yaml:"database"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=0,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true" validate:"gte=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// AppConfig identifies the application served by the engine
type AppConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment" validate:"oneof=development test staging production"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Format   string `yaml:"format" validate:"oneof=json console text"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// HealthConfig controls the checks answered ahead of user routes
type HealthConfig struct {
	ProbeUserAgents []string `yaml:"probe_user_agents" split_words:"true" validate:"dive,required"`
	Path            string   `yaml:"path" validate:"required,startswith=/"`
}

// SecurityConfig contains the default middleware bundle settings
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" split_words:"true"`
	BodyLimit      int64           `yaml:"body_limit" split_words:"true" validate:"gte=0"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `yaml:"burst" validate:"required_if=Enabled true,gte=0"`
}

// DatabaseConfig selects the database/sql driver used for model initialization
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite"`
	DSN    string `yaml:"dsn"`
}

// TelemetryConfig controls OpenTelemetry tracing and Prometheus metrics
type TelemetryConfig struct {
	Tracing       bool    `yaml:"tracing"`
	TraceExporter string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	Metrics       bool    `yaml:"metrics"`
	MetricsPath   string  `yaml:"metrics_path" split_words:"true" validate:"required,startswith=/"`
	SampleRatio   float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
}

// IsDevelopment reports whether status messages and stack traces may be revealed.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// Load resolves configuration from defaults, the YAML file and the environment.
func Load() (*Config, error) {
	return LoadFile(configFilePath())
}

// LoadFile is Load with an explicit YAML file; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; defaults come from Default.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the keys present in the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// configFilePath returns the path to the config file, or "" when none exists
func configFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
		},
		App: AppConfig{
			Name:        "neobeach",
			Version:     EngineVersion,
			Environment: EnvDevelopment,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Health: HealthConfig{
			ProbeUserAgents: append([]string(nil), DefaultProbeUserAgents...),
			Path:            DefaultHealthPath,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     100,
				Burst:   50,
			},
			BodyLimit: DefaultBodyLimit,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Telemetry: TelemetryConfig{
			Tracing:       false,
			TraceExporter: "none",
			Metrics:       true,
			MetricsPath:   DefaultMetricsPath,
			SampleRatio:   1.0,
		},
	}
}
