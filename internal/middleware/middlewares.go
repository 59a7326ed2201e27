package middleware

import (
	"github.com/deppfellow/notify-dispatch/internal/server"
)

// Middlewares groups the middleware components so the router can be built
// from a single value.
//
// Each component is constructed once from the Server container and reused
// for every route registration.
type Middlewares struct {
	// Global holds the stock echo middleware configured from the server
	// config: CORS, request logging, recovery, secure headers, body limit
	// and the global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger (request_id, method,
	// path, ip, optional trace ids) to each request.
	ContextEnhancer *ContextEnhancer

	// Tracing installs the New Relic transaction middleware and adds
	// custom attributes to it.
	Tracing *TracingMiddleware
}

// NewMiddlewares builds every middleware component.
//
// The New Relic application comes from the server's LoggerService. When New
// Relic is not configured GetApplication() returns nil and the tracing
// middleware degrades to a no-op: no transactions, no attributes.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
	}
}
