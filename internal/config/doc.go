// Package config loads the engine configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All variables are namespaced with NEOBEACH_ and follow the struct nesting:
//
//	NEOBEACH_SERVER_PORT=3000
//	NEOBEACH_APP_ENVIRONMENT=production
//	NEOBEACH_LOGGING_FORMAT=console
//	NEOBEACH_HEALTH_PROBE_USER_AGENTS=ELB-HealthChecker,GoogleHC
//	NEOBEACH_DATABASE_DSN=file:app.db
//
// NEOBEACH_CONFIG_FILE points at an explicit YAML file; otherwise config.yaml
// and configs/config.yaml are tried.
//
// # Testing
//
// Default returns a validated configuration that needs no environment.
package config
