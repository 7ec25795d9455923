// Package server exposes the layout pipeline over HTTP.
//
// Routes are mounted on a chi router:
//
//	POST /api/v1/layout   graph JSON in, positioned diagram out
//	POST /api/v1/render   graph JSON in, diagram plus rendered artifacts out
//	GET  /healthz         liveness probe
//	GET  /metrics         Prometheus exposition (when enabled)
//
// Every request gets an X-Request-ID (kept from the client when present),
// is logged through charmbracelet/log and reported to
// [observability.HTTP]. Failures are answered with the status derived from
// their [errors.Code] and a JSON body:
//
//	{"code": "INVALID_GRAPH", "message": "invalid graph", "request_id": "..."}
//
// [observability.HTTP]: github.com/matzehuels/kubetopo/pkg/observability.HTTP
// [errors.Code]: github.com/matzehuels/kubetopo/pkg/errors.Code
package server
