// Package channel delivers a notification to the channel configured for
// its protocol.
//
// The driver is chosen once at startup (channels.driver): SNS topics,
// Kafka topics or Redis pub/sub channels. The EMAIL channel can be
// switched to Resend independently (channels.email_driver).
package channel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/deppfellow/notify-dispatch/internal/model"
)

// Publisher sends one notification to a channel and returns the id the
// channel assigned to it.
type Publisher interface {
	Publish(ctx context.Context, channelID, subject, message string) (string, error)
}

// Publishers maps every protocol to its Publisher.
type Publishers map[model.Protocol]Publisher

// Envelope is the payload written by the kafka and redis drivers.
type Envelope struct {
	ID       string         `json:"id"`
	Subject  string         `json:"subject"`
	Message  string         `json:"message"`
	Protocol model.Protocol `json:"protocol"`
	SentAt   time.Time      `json:"sent_at"`
}

func (e Envelope) encode() ([]byte, error) {
	return json.Marshal(e)
}
