package repository

import (
	"context"
	"time"

	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisUsageStore keeps each protocol in a hash at "<prefix>:<protocol>".
// Upserts run as MULTI/EXEC so the increment and the payload overwrite are
// applied together.
type RedisUsageStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisUsageStore(client redis.Cmdable, prefix string) *RedisUsageStore {
	return &RedisUsageStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisUsageStore) key(protocol model.Protocol) string {
	if s.prefix == "" {
		return protocol.String()
	}
	return s.prefix + ":" + protocol.String()
}

func (s *RedisUsageStore) Upsert(ctx context.Context, protocol model.Protocol, subject, message string) (*model.UsageRecord, error) {
	key := s.key(protocol)
	now := s.now().UTC()

	var counter *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		counter = pipe.HIncrBy(ctx, key, "counter", 1)
		pipe.HSet(ctx, key,
			"protocol", protocol.String(),
			"subject", subject,
			"message", message,
			"updated_at", now.Format(time.RFC3339Nano),
		)
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &model.UsageRecord{
		Protocol:  protocol,
		Counter:   counter.Val(),
		Subject:   subject,
		Message:   message,
		UpdatedAt: now,
	}, nil
}

func (s *RedisUsageStore) Get(ctx context.Context, protocol model.Protocol) (*model.UsageRecord, error) {
	vals, err := s.client.HGetAll(ctx, s.key(protocol)).Result()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(vals) == 0 {
		return nil, ErrUsageNotFound
	}
	return decodeUsageHash(vals)
}

// decodeUsageHash maps HGETALL output onto a record. updated_at is parsed
// separately because the redis struct scanner has no time support.
func decodeUsageHash(vals map[string]string) (*model.UsageRecord, error) {
	var rec model.UsageRecord
	if err := redis.NewMapStringStringResult(vals, nil).Scan(&rec); err != nil {
		return nil, errors.Wrap(err, "decode usage hash")
	}

	if ts := vals["updated_at"]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, errors.Wrap(err, "decode usage updated_at")
		}
		rec.UpdatedAt = t
	}

	return &rec, nil
}
