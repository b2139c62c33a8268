// Package telemetry provides observability for budgetgate.
//
// # Components
//
//   - logging: structured logger construction and request id plumbing
//   - health: liveness/readiness checks with HTTP probe handlers
//
// Prometheus metrics live next to the code they observe, in
// pkg/service; the HTTP server exposes the scrape endpoint.
package telemetry
