package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultSubject  = "Default Subject"
	DefaultMessage  = "Default Message"
	DefaultProtocol = ProtocolSMS
)

var errNotAnObject = errors.New("request body must be a JSON object")

var validate = validator.New()

// NotificationRequest is the parsed, defaulted inbound payload.
type NotificationRequest struct {
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
	Protocol Protocol `json:"protocol" validate:"oneof=EMAIL SMS PUSH"`
}

// ParseNotificationRequest decodes body and applies defaults to absent
// fields.
//
// Keys match exactly: "Protocol" is not "protocol". A null subject or
// message is rejected; a null protocol is kept as the empty protocol so it
// fails validation. An explicit empty string is kept as is.
func ParseNotificationRequest(body []byte) (*NotificationRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotAnObject
	}

	req := &NotificationRequest{
		Subject:  DefaultSubject,
		Message:  DefaultMessage,
		Protocol: DefaultProtocol,
	}

	if err := stringField(fields, "subject", false, &req.Subject); err != nil {
		return nil, err
	}
	if err := stringField(fields, "message", false, &req.Message); err != nil {
		return nil, err
	}

	protocol := string(req.Protocol)
	if err := stringField(fields, "protocol", true, &protocol); err != nil {
		return nil, err
	}
	req.Protocol = Protocol(protocol)

	return req, nil
}

// stringField overwrites dst with fields[key] when the key is present. A
// null value becomes "" when nullable, otherwise it is an error.
func stringField(fields map[string]json.RawMessage, key string, nullable bool, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if !nullable {
			return fmt.Errorf("field %q must be a string, got null", key)
		}
		*dst = ""
		return nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q must be a string: %w", key, err)
	}
	return nil
}

// Validate checks the protocol against the set of known channels.
func (r *NotificationRequest) Validate() error {
	return validate.Struct(r)
}

// UsageRecord is the per-protocol counter plus the last dispatched payload.
type UsageRecord struct {
	Protocol  Protocol  `json:"protocol" dynamodbav:"protocol" redis:"protocol"`
	Counter   int64     `json:"counter" dynamodbav:"counter" redis:"counter"`
	Subject   string    `json:"subject" dynamodbav:"subject" redis:"subject"`
	Message   string    `json:"message" dynamodbav:"message" redis:"message"`
	UpdatedAt time.Time `json:"updated_at,omitzero" dynamodbav:"-" redis:"-"`
}

// DispatchResult describes a successful dispatch.
type DispatchResult struct {
	Protocol     Protocol     `json:"protocol"`
	ChannelID    string       `json:"channel_id"`
	MessageID    string       `json:"message_id"`
	Confirmation string       `json:"confirmation"`
	Usage        *UsageRecord `json:"usage"`
}
