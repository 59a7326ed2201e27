package service

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/deppfellow/notify-dispatch/internal/lib/channel"
	"github.com/deppfellow/notify-dispatch/internal/metrics"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/repository"
	"github.com/deppfellow/notify-dispatch/internal/sqlerr"
	"github.com/rs/zerolog"
)

const confirmationFormat = "Notification successfully sent to SNS topic: %s"

// Protocol labels for requests rejected before a valid protocol is known.
// Raw client input never becomes a label value.
const (
	labelUnparsed     = "unparsed"
	labelUnconfigured = "unconfigured"
	labelInvalid      = "invalid"
)

type NotificationService struct {
	channels   config.ChannelsConfig
	publishers channel.Publishers
	usage      repository.UsageStore
	metrics    *metrics.Metrics
	logger     *zerolog.Logger

	// slowStore flags upserts slower than this; zero disables the check.
	slowStore time.Duration
}

func NewNotificationService(
	channels config.ChannelsConfig,
	publishers channel.Publishers,
	usage repository.UsageStore,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		channels:   channels,
		publishers: publishers,
		usage:      usage,
		metrics:    m,
		logger:     logger,
	}
}

// Dispatch parses body, publishes the notification on its protocol's
// channel and records the usage. Every error is an *errs.DispatchError.
//
// The channel is called before the store, so a StoreFailure means the
// notification went out but the counter did not move.
func (s *NotificationService) Dispatch(ctx context.Context, body string) (*model.DispatchResult, error) {
	start := time.Now()
	log := loggerFrom(ctx, s.logger)

	if body == "" {
		s.metrics.Observe(labelUnparsed, metrics.OutcomeRejected, 0)
		return nil, errs.NewMissingBody()
	}

	req, err := model.ParseNotificationRequest([]byte(body))
	if err != nil {
		s.metrics.Observe(labelUnparsed, metrics.OutcomeRejected, 0)
		return nil, errs.NewInvalidPayload(err)
	}

	if !s.channels.Configured() {
		log.Error().Msg("delivery channel ids are not fully configured")
		s.metrics.Observe(labelUnconfigured, metrics.OutcomeRejected, 0)
		return nil, errs.NewConfigMissing()
	}

	if err := req.Validate(); err != nil {
		s.metrics.Observe(labelInvalid, metrics.OutcomeRejected, 0)
		return nil, errs.NewInvalidProtocol(err)
	}

	protocol := req.Protocol
	channelID := s.channels.ID(protocol)
	publisher, ok := s.publishers[protocol]
	if !ok {
		// Only reachable when the publisher registry is wired incorrectly.
		s.metrics.Observe(protocol.String(), metrics.OutcomeChannelFailure, time.Since(start))
		return nil, errs.NewChannelFailure(fmt.Errorf("no publisher registered for %s", protocol))
	}

	messageID, err := publisher.Publish(ctx, channelID, req.Subject, req.Message)
	if err != nil {
		log.Error().Err(err).
			Str("protocol", protocol.String()).
			Str("channel_id", channelID).
			Msg("failed to publish notification")
		s.metrics.Observe(protocol.String(), metrics.OutcomeChannelFailure, time.Since(start))
		return nil, errs.NewChannelFailure(err)
	}

	storeStart := time.Now()
	usage, err := s.usage.Upsert(ctx, protocol, req.Subject, req.Message)
	if elapsed := time.Since(storeStart); s.slowStore > 0 && elapsed > s.slowStore {
		log.Warn().
			Str("protocol", protocol.String()).
			Dur("duration", elapsed).
			Msg("slow usage upsert")
	}
	if err != nil {
		log.Error().Err(err).
			Str("protocol", protocol.String()).
			Str("sql_code", string(sqlerr.ErrCode(err))).
			Msg("failed to record notification usage")
		log.Warn().
			Str("protocol", protocol.String()).
			Str("channel_id", channelID).
			Str("message_id", messageID).
			Msg("notification delivered but usage not recorded")
		s.metrics.Observe(protocol.String(), metrics.OutcomeStoreFailure, time.Since(start))
		return nil, errs.NewStoreFailure(err)
	}

	s.metrics.Observe(protocol.String(), metrics.OutcomeDelivered, time.Since(start))

	log.Info().
		Str("protocol", protocol.String()).
		Str("message_id", messageID).
		Int64("counter", usage.Counter).
		Msg("notification dispatched")

	return &model.DispatchResult{
		Protocol:     protocol,
		ChannelID:    channelID,
		MessageID:    messageID,
		Confirmation: fmt.Sprintf(confirmationFormat, channelID),
		Usage:        usage,
	}, nil
}
