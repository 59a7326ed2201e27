package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/notify-dispatch/internal/server"
)

// TracingMiddleware owns the New Relic echo middleware.
//
// It has two layers:
//  1. NewRelicMiddleware() -> starts a transaction per request
//  2. EnhanceTracing()     -> adds custom attributes and notices errors
//
// nrApp is nil when New Relic is disabled; both layers then pass through.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the nrecho middleware, which starts a
// transaction for each request and stores it in the request context. This
// is what makes newrelic.FromContext work in the handlers, the service
// layer and the pgx/redis integrations.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		// No-op: return the next handler unwrapped.
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to the transaction.
//
// It must run after NewRelicMiddleware and RequestID. It adds:
//   - the client ip
//   - the configured store and channel drivers
//   - the request id, to correlate traces with logs
//   - the response status, after the handler ran
//
// Returned errors are noticed through nrpkgerrors.Wrap so the pkg/errors
// stack shows up in the trace.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// nil when New Relic is disabled or the middleware order is wrong.
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("service.store_driver", tm.server.Config.Store.Driver)
			txn.AddAttribute("service.channel_driver", tm.server.Config.Channels.Driver)
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// Noticing does not stop echo from handling the error; it is still
			// returned to the global error handler.
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			// Known only after the handler wrote the response.
			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
