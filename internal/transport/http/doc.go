// Package http holds the handlers for the engine's own endpoints: the
// health report, the readiness report and the Prometheus scrape target.
//
// Handlers stay thin. They call a service and render its result with
// go-chi/render; failures are written as RFC 7807 problem documents.
//
//	health := http.NewHealthHandler(healthService, logger)
//	root.Get("/_health", health.Health)
//
// The server binds these handlers on its root router, outside the
// application middleware, so they must not depend on anything that
// middleware provides.
package http
