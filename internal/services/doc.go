// Package services holds the logic behind the engine's built-in endpoints,
// kept apart from the HTTP layer so it can be tested without a server.
//
// HealthService reports the process vitals served on the health path and
// runs the readiness checks registered by the application:
//
//	health := services.NewHealthService(config.EngineVersion, time.Now(), logger)
//	health.AddCheck("database", db)
//	report := health.Health(ctx)
//
// Services receive their logger at construction and never read process-wide
// state.
package services
