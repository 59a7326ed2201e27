package repository

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/deppfellow/notify-dispatch/internal/server"
)

// Repositories is the container handed to the services.
type Repositories struct {
	Usage UsageStore
}

// NewRepositories picks the usage store for store.driver. The server must
// already hold the client that driver needs.
func NewRepositories(s *server.Server) (*Repositories, error) {
	cfg := s.Config.Store

	var usage UsageStore
	switch cfg.Driver {
	case "postgres":
		if s.DB == nil {
			return nil, fmt.Errorf("store driver postgres: database not initialized")
		}
		usage = NewPostgresUsageStore(s.DB.Pool, cfg.Table)
	case "redis":
		if s.Redis == nil {
			return nil, fmt.Errorf("store driver redis: redis client not initialized")
		}
		usage = NewRedisUsageStore(s.Redis, cfg.KeyPrefix)
	case "dynamodb":
		if s.AWS == nil {
			return nil, fmt.Errorf("store driver dynamodb: aws config not loaded")
		}
		client := dynamodb.NewFromConfig(*s.AWS, func(o *dynamodb.Options) {
			if s.Config.AWS.Endpoint != "" {
				o.BaseEndpoint = &s.Config.AWS.Endpoint
			}
		})
		usage = NewDynamoDBUsageStore(client, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	s.Logger.Info().Str("driver", cfg.Driver).Str("table", cfg.Table).Msg("usage store ready")

	return &Repositories{Usage: usage}, nil
}
