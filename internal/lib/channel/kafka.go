package channel

import (
	"context"
	"time"

	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer with no default topic; each message
// names its own.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 5 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

// KafkaPublisher writes an Envelope to the topic named by the channel id,
// keyed by a fresh message id.
type KafkaPublisher struct {
	writer   MessageWriter
	protocol model.Protocol
	now      func() time.Time
}

func NewKafkaPublisher(writer MessageWriter, protocol model.Protocol) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, protocol: protocol, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, channelID, subject, message string) (string, error) {
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

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: channelID,
		Key:   []byte(env.ID),
		Value: b,
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	return env.ID, nil
}
