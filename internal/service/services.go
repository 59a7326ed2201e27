package service

import (
	"github.com/deppfellow/notify-dispatch/internal/lib/channel"
	"github.com/deppfellow/notify-dispatch/internal/metrics"
	"github.com/deppfellow/notify-dispatch/internal/repository"
	"github.com/deppfellow/notify-dispatch/internal/server"
)

type Services struct {
	Notification *NotificationService
	Usage        *UsageService
}

func NewServices(s *server.Server, repos *repository.Repositories, pubs channel.Publishers) (*Services, error) {
	m := metrics.NewMetrics(s.Registry)

	notification := NewNotificationService(s.Config.Channels, pubs, repos.Usage, m, s.Logger)
	notification.slowStore = s.Config.Observability.Logging.SlowQueryThreshold

	return &Services{
		Notification: notification,
		Usage:        NewUsageService(repos.Usage),
	}, nil
}
