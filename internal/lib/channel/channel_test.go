package channel

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type fakeSNS struct {
	got *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSPublisher_Publish(t *testing.T) {
	fake := &fakeSNS{}
	p := NewSNSPublisher(fake)

	id, err := p.Publish(context.Background(), "arn:aws:sns:us-east-1:123:sms", "Subject", "Body")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id != "msg-1" {
		t.Errorf("Publish() id = %q, want %q", id, "msg-1")
	}
	if aws.ToString(fake.got.TopicArn) != "arn:aws:sns:us-east-1:123:sms" {
		t.Errorf("TopicArn = %q", aws.ToString(fake.got.TopicArn))
	}
	if aws.ToString(fake.got.Subject) != "Subject" || aws.ToString(fake.got.Message) != "Body" {
		t.Errorf("Subject/Message = %q/%q", aws.ToString(fake.got.Subject), aws.ToString(fake.got.Message))
	}
}

func TestSNSPublisher_Error(t *testing.T) {
	cause := errors.New("NotFound: Topic does not exist")
	p := NewSNSPublisher(&fakeSNS{err: cause})

	_, err := p.Publish(context.Background(), "arn", "s", "m")
	if !errors.Is(err, cause) {
		t.Fatalf("Publish() error = %v, want %v", err, cause)
	}
	if err.Error() != cause.Error() {
		t.Errorf("error text = %q, want %q", err.Error(), cause.Error())
	}
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, model.ProtocolPush)
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	id, err := p.Publish(context.Background(), "push-notifications", "Hi", "There")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if uuid.Validate(id) != nil {
		t.Errorf("Publish() id = %q, want a UUID", id)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}

	msg := w.msgs[0]
	if msg.Topic != "push-notifications" || string(msg.Key) != id {
		t.Errorf("Topic/Key = %q/%q", msg.Topic, msg.Key)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	want := Envelope{ID: id, Subject: "Hi", Message: "There", Protocol: model.ProtocolPush, SentAt: fixed}
	if env != want {
		t.Errorf("envelope = %+v, want %+v", env, want)
	}
}

func TestKafkaPublisher_Error(t *testing.T) {
	cause := errors.New("leader not available")
	p := NewKafkaPublisher(&fakeWriter{err: cause}, model.ProtocolSMS)

	if _, err := p.Publish(context.Background(), "sms", "s", "m"); !errors.Is(err, cause) {
		t.Errorf("Publish() error = %v, want %v", err, cause)
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "sms-notifications")
	defer sub.Close()
	// Wait for the subscription to be confirmed before publishing.
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	p := NewRedisPublisher(client, model.ProtocolSMS)
	fixed := time.Date(2026, 8, 9, 10, 11, 12, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	id, err := p.Publish(ctx, "sms-notifications", "Hi", "There")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if uuid.Validate(id) != nil {
		t.Errorf("Publish() id = %q, want a UUID", id)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage() error = %v", err)
	}
	if msg.Channel != "sms-notifications" {
		t.Errorf("Channel = %q, want %q", msg.Channel, "sms-notifications")
	}

	var env Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	want := Envelope{ID: id, Subject: "Hi", Message: "There", Protocol: model.ProtocolSMS, SentAt: fixed}
	if env != want {
		t.Errorf("envelope = %+v, want %+v", env, want)
	}
}

func TestRedisPublisher_Error(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mr.SetError("READONLY You can't write against a read only replica.")

	p := NewRedisPublisher(client, model.ProtocolEmail)
	if _, err := p.Publish(context.Background(), "email", "s", "m"); err == nil {
		t.Error("Publish() error = nil, want error from redis")
	}
}
