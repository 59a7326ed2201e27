package config

import (
	"fmt"

	"github.com/deppfellow/notify-dispatch/internal/model"
)

// ChannelsConfig holds the three delivery channel identifiers and the
// driver used to reach them.
//
// Missing identifiers are NOT a startup error. Every dispatch checks
// Configured() and reports the problem in its own response.
type ChannelsConfig struct {
	// Driver publishes to all three channels: sns, kafka or redis.
	Driver string `koanf:"driver" validate:"required,oneof=sns kafka redis"`

	// EmailDriver optionally overrides the EMAIL channel. "resend" emails
	// the Email identifier through Resend instead.
	EmailDriver string `koanf:"email_driver" validate:"omitempty,oneof=resend"`
	EmailFrom   string `koanf:"email_from"`

	Email string `koanf:"email"`
	SMS   string `koanf:"sms"`
	Push  string `koanf:"push"`
}

// Configured reports whether every channel identifier is set.
func (c ChannelsConfig) Configured() bool {
	return c.Email != "" && c.SMS != "" && c.Push != ""
}

// ID returns the channel identifier bound to protocol, or "" for an
// unknown protocol.
func (c ChannelsConfig) ID(protocol model.Protocol) string {
	switch protocol {
	case model.ProtocolEmail:
		return c.Email
	case model.ProtocolSMS:
		return c.SMS
	case model.ProtocolPush:
		return c.Push
	}
	return ""
}

// Validate checks the rules the struct tags do not cover.
func (c ChannelsConfig) Validate() error {
	if c.EmailDriver == "resend" && c.EmailFrom == "" {
		return fmt.Errorf("email driver resend requires channels.email_from")
	}
	return nil
}
