// Package email delivers the EMAIL channel through Resend.
//
// The configured EMAIL channel id is used as the recipient address, usually
// a distribution list. The message is sent both as plain text and rendered
// into the notification HTML template.
package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// sender is the part of resend.EmailsSvc the client needs.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client sends notifications as emails.
type Client struct {
	emails sender
	from   string
	logger *zerolog.Logger
}

// NewClient creates a Resend-backed Client from the integration and
// channels config.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return newClient(resend.NewClient(cfg.Integration.ResendAPIKey).Emails, cfg.Channels.EmailFrom, logger)
}

func newClient(emails sender, from string, logger *zerolog.Logger) *Client {
	return &Client{emails: emails, from: from, logger: logger}
}

// Publish sends subject and message to the address in channelID and
// returns the Resend email id.
func (c *Client) Publish(ctx context.Context, channelID, subject, message string) (string, error) {
	html, err := Render(TemplateNotification, map[string]string{
		"Subject": subject,
		"Message": message,
	})
	if err != nil {
		return "", err
	}

	sent, err := c.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{channelID},
		Subject: subject,
		Text:    message,
		Html:    html,
	})
	if err != nil {
		return "", errors.WithStack(fmt.Errorf("failed to send email: %w", err))
	}

	c.logger.Debug().Str("email_id", sent.Id).Str("to", channelID).Msg("email sent")

	return sent.Id, nil
}
