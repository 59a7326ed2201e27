// Package router builds the echo router: the middleware chain and the
// route table.
package router

import (
	"github.com/deppfellow/notify-dispatch/internal/handler"
	"github.com/deppfellow/notify-dispatch/internal/middleware"
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter wires middleware and routes. Order matters: the New Relic
// transaction and the request id must exist before the context logger is
// built, and the logger before anything logs.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, s, h)

	v1 := router.Group("/api/v1")
	registerNotificationRoutes(v1, h)

	return router
}
