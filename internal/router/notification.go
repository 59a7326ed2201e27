package router

import (
	"github.com/deppfellow/notify-dispatch/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerNotificationRoutes(g *echo.Group, h *handler.Handlers) {
	g.POST("/notifications", h.Notification.SendNotification)
	g.GET("/usage/:protocol", h.Usage.GetUsage())
}
