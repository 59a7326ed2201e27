// Package server defines the Server container that composes the app's
// shared dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the PostgreSQL pool (postgres store)
//   - the redis client (redis store or redis channel driver)
//   - the AWS SDK config (sns channel driver or dynamodb store)
//   - the Prometheus registry
//   - http.Server
//
// Only the clients the configured drivers need are created.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/deppfellow/notify-dispatch/internal/database"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/notify-dispatch/internal/logger"
)

const redisPingTimeout = 5 * time.Second

type closer struct {
	name string
	fn   func() error
}

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is nil unless store.driver is postgres.
	DB *database.Database

	// Redis is nil unless the store or the channel driver is redis.
	Redis *redis.Client

	// AWS is nil unless the channel driver is sns or the store is dynamodb.
	AWS *aws.Config

	// Registry collects the service metrics served on /metrics.
	Registry *prometheus.Registry

	httpServer *http.Server
	closers    []closer
}

// New builds the container and connects the clients the configured drivers
// need. A client that cannot connect fails startup.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Registry:      prometheus.NewRegistry(),
	}

	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.Store.Driver == "postgres" {
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db
	}

	if cfg.Store.Driver == "redis" || cfg.Channels.Driver == "redis" {
		client, err := newRedisClient(ctx, cfg.Redis, loggerService)
		if err != nil {
			s.closeClients()
			return nil, err
		}
		s.Redis = client
		logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
	}

	if cfg.Store.Driver == "dynamodb" || cfg.Channels.Driver == "sns" {
		awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			s.closeClients()
			return nil, err
		}
		s.AWS = &awsCfg
		logger.Info().Str("region", awsCfg.Region).Msg("loaded aws config")
	}

	return s, nil
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig, loggerService *loggerPkg.LoggerService) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func loadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return awsCfg, nil
}

// OnShutdown registers fn to run during Shutdown, after the HTTP server
// has drained. Closers run in reverse registration order.
func (s *Server) OnShutdown(name string, fn func() error) {
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// SetupHTTPServer configures the internal net/http server around handler.
// Config timeouts are seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP. SetupHTTPServer must run first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("store", s.Config.Store.Driver).
		Str("channels", s.Config.Channels.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then closes every client. It keeps
// going after a failure and returns all errors joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if err := s.closeClients(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *Server) closeClients() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.fn(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", c.name, err))
		}
	}
	s.closers = nil

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
		s.Redis = nil
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
		s.DB = nil
	}

	return errors.Join(errs...)
}
