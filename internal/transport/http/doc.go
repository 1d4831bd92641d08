// Package http implements the HTTP handlers of the consolidator web service.
// Handlers stay thin: they parse the multipart upload, call the
// consolidation service and format the response.
//
// # Endpoints
//
//	GET  /                         upload page
//	POST /                         upload page with preview and download link
//	POST /api/consolidate          workbook download (?format=csv for CSV)
//	POST /api/consolidate/preview  JSON preview and report
//	GET  /api/health               health status
//	GET  /api/health/live          liveness
//	GET  /api/health/ready         readiness
//	GET  /api/version              build information
//
// # Uploads
//
// Every consolidation endpoint reads a multipart form with the fields
// start and end (YYYY-MM-DD) and one or more files parts:
//
//	curl -F start=2024-01-01 -F end=2024-01-31 \
//	     -F files=@AAA.csv -F files=@BBB.csv \
//	     -o acciones_consolidadas.xlsx http://localhost:8080/api/consolidate
//
// # Error Handling
//
// API errors are RFC 7807 problem documents produced by
// internal/errors.ErrorHandler. The HTML page shows the message inline.
package http
