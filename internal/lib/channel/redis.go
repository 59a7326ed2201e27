package channel

import (
	"context"
	"time"

	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher PUBLISHes an Envelope on the pub/sub channel named by the
// channel id. Redis gives no delivery guarantee to absent subscribers.
type RedisPublisher struct {
	client   redis.Cmdable
	protocol model.Protocol
	now      func() time.Time
}

func NewRedisPublisher(client redis.Cmdable, protocol model.Protocol) *RedisPublisher {
	return &RedisPublisher{client: client, protocol: protocol, now: time.Now}
}

func (p *RedisPublisher) Publish(ctx context.Context, channelID, subject, message string) (string, error) {
	env := Envelope{
		ID:       uuid.NewString(),
		Subject:  subject,
		Message:  message,
		Protocol: p.protocol,
		SentAt:   p.now().UTC(),
	}

	b, err := env.encode()
	if err != nil {
		return "", errors.Wrap(err, "encode envelope")
	}

	if err := p.client.Publish(ctx, channelID, b).Err(); err != nil {
		return "", errors.WithStack(err)
	}

	return env.ID, nil
}
