package handler

import (
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/deppfellow/notify-dispatch/internal/service"
)

// Handlers groups every HTTP handler so the router takes a single value.
type Handlers struct {
	Notification *NotificationHandler
	Usage        *UsageHandler
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Notification: NewNotificationHandler(s, services.Notification),
		Usage:        NewUsageHandler(s, services.Usage),
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
	}
}
