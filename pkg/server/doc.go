// Package server provides the HTTP front end for the budget service.
//
// It exposes the two service operations as JSON-over-POST endpoints:
//
//	POST /record_spending  {"config_name": ..., "project_id": ..., "spent": ...}
//	POST /exceeds_budget   {"config_name": ..., "project_id": ...}
//
// Both answer {"exceeds_budget": true|false}. Alongside them the server
// serves /health and /ready probes, /version, and the Prometheus scrape
// endpoint. Requests pass through a middleware chain of request id
// assignment, structured logging, and panic recovery.
package server
