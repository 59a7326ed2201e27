package channel

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/deppfellow/notify-dispatch/internal/lib/email"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/server"
)

// NewPublishers builds one Publisher per protocol for channels.driver and
// applies the email override. Clients that need closing are registered on
// the server's shutdown list.
func NewPublishers(s *server.Server) (Publishers, error) {
	cfg := s.Config.Channels
	pubs := make(Publishers, len(model.Protocols))

	switch cfg.Driver {
	case "sns":
		if s.AWS == nil {
			return nil, fmt.Errorf("channel driver sns: aws config not loaded")
		}
		client := sns.NewFromConfig(*s.AWS, func(o *sns.Options) {
			if s.Config.AWS.Endpoint != "" {
				o.BaseEndpoint = &s.Config.AWS.Endpoint
			}
		})
		p := NewSNSPublisher(client)
		for _, proto := range model.Protocols {
			pubs[proto] = p
		}
	case "kafka":
		w := NewKafkaWriter(s.Config.Kafka.Brokers)
		s.OnShutdown("kafka writer", w.Close)
		for _, proto := range model.Protocols {
			pubs[proto] = NewKafkaPublisher(w, proto)
		}
	case "redis":
		if s.Redis == nil {
			return nil, fmt.Errorf("channel driver redis: redis client not initialized")
		}
		for _, proto := range model.Protocols {
			pubs[proto] = NewRedisPublisher(s.Redis, proto)
		}
	default:
		return nil, fmt.Errorf("unknown channel driver %q", cfg.Driver)
	}

	if cfg.EmailDriver == "resend" {
		pubs[model.ProtocolEmail] = email.NewClient(s.Config, s.Logger)
	}

	s.Logger.Info().
		Str("driver", cfg.Driver).
		Str("email_driver", cfg.EmailDriver).
		Msg("delivery channels ready")

	return pubs, nil
}
