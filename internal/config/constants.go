package config

import "time"

// Engine identity, stamped on every response.
const (
	EngineName    = "Neobeach Core"
	EngineVersion = "1.0.0"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "NEOBEACH"

// ConfigFileEnv names the variable pointing at an explicit YAML config file.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Defaults
const (
	DefaultPort            = 3000
	DefaultHealthPath      = "/_health"
	DefaultMetricsPath     = "/metrics"
	DefaultBodyLimit       = 1 << 20
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
)

// DefaultProbeUserAgents are the load-balancer health checkers answered
// before any routing happens.
var DefaultProbeUserAgents = []string{"ELB-HealthChecker", "GoogleHC"}
