// Package app assembles the layers shared by the HTTP and Lambda entry
// points: server container, repositories, channels, services and handlers.
package app

import (
	"context"
	"fmt"

	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/deppfellow/notify-dispatch/internal/handler"
	"github.com/deppfellow/notify-dispatch/internal/lib/channel"
	"github.com/deppfellow/notify-dispatch/internal/logger"
	"github.com/deppfellow/notify-dispatch/internal/repository"
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/deppfellow/notify-dispatch/internal/service"
	"github.com/rs/zerolog"
)

type App struct {
	Server   *server.Server
	Handlers *handler.Handlers
}

// New builds the application. On error every client opened so far is
// closed.
func New(ctx context.Context, cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) (*App, error) {
	srv, err := server.New(ctx, cfg, log, loggerService)
	if err != nil {
		return nil, err
	}

	handlers, err := build(srv)
	if err != nil {
		_ = srv.Shutdown(ctx)
		return nil, err
	}

	return &App{Server: srv, Handlers: handlers}, nil
}

func build(srv *server.Server) (*handler.Handlers, error) {
	repos, err := repository.NewRepositories(srv)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	pubs, err := channel.NewPublishers(srv)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize delivery channels: %w", err)
	}

	services, err := service.NewServices(srv, repos, pubs)
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	return handler.NewHandlers(srv, services), nil
}
