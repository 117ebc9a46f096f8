// Package app wires the dashboard together: configuration, logging,
// OpenTelemetry, the data source, services, the chi router and the HTTP
// server with graceful shutdown.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and CBP_* variables
//	2. Initialize logging and observability
//	3. Build the data source (per request file reads, or the dataset cache)
//	4. Initialize the dashboard and health services
//	5. Set up middleware and routes
//	6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    slog.Error("Failed to initialize application", slog.String("error", err.Error()))
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// Tests use New with an explicit configuration and drive Router through
// httptest. Initialization errors are returned to the caller; the package
// never calls os.Exit.
package app
