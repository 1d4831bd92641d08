// Package app wires configuration, logging, telemetry, services and the
// HTTP router into one Application and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from config.yaml and CONSOLIDATOR_* variables
//  2. Initialize the slog logger and OpenTelemetry providers
//  3. Create the consolidation and health services
//  4. Build the chi router and middleware chain
//  5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within
// Server.ShutdownTimeout and flushes telemetry. Initialization errors are
// returned; the package never calls os.Exit.
package app
