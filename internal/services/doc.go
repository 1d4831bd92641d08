// Package services implements the business logic layer of the consolidator.
// It sits between the HTTP handlers or the CLI and the processing packages,
// so that request validation, limits, tracing and metrics live in one place.
//
// # Available Services
//
//   - ConsolidationService: validates a request, normalizes every upload,
//     joins them onto the calendar and exports the result
//   - HealthService: liveness, readiness and version information
//
// # Common Service Pattern
//
//	svc, err := services.NewConsolidationService(cfg, telemetry, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := svc.Consolidate(ctx, services.ConsolidationRequest{
//	    Start: "2024-01-01",
//	    End:   "2024-01-05",
//	    Files: uploads,
//	})
//
// # Error Handling
//
// Services return the typed errors of internal/errors unchanged, so that
// handlers map PARSE and VALIDATION to 400 and FORMAT to 422.
package services
