// Package app wires a runnable application out of the engine packages:
// configuration, logging, telemetry, the optional database and the server.
//
// # Initialization Flow
//
//	1. Build the logger from the logging configuration
//	2. Initialize OpenTelemetry (stdout tracing, Prometheus metrics)
//	3. Open the database and initialize the registered models
//	4. Create the server, register readiness checks, load the default
//	   middleware bundle and mount the metrics endpoint
//
// The caller then mounts its routers on Application.Server and calls Run:
//
//	a, err := app.NewApplication(ctx, cfg, app.WithModels(User{}))
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	a.Server.MustLoadRouters(api)
//	return a.Run(ctx)
package app
