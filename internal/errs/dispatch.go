package errs

import (
	"errors"
	"net/http"
)

// Kind classifies a failure of the notification dispatch procedure.
type Kind int

const (
	// KindMissingBody: the request carried no body.
	KindMissingBody Kind = iota + 1
	// KindInvalidPayload: the body is not a JSON object of string fields.
	KindInvalidPayload
	// KindConfigMissing: at least one channel identifier is not configured.
	KindConfigMissing
	// KindInvalidProtocol: protocol is not EMAIL, SMS or PUSH.
	KindInvalidProtocol
	// KindChannelFailure: the delivery channel returned an error.
	KindChannelFailure
	// KindStoreFailure: the usage upsert returned an error. The notification
	// has already been delivered at this point.
	KindStoreFailure
)

// Fixed response bodies. Clients match on these strings.
const (
	MessageMissingBody     = "Request body is missing."
	MessageConfigMissing   = "SNS_TOPIC_ARN environment variable not set."
	MessageInvalidProtocol = "Invalid protocol. Must be EMAIL, SMS, or PUSH."

	invalidPayloadPrefix = "Invalid JSON format: "
	sendFailurePrefix    = "Error sending notification: "
)

func (k Kind) String() string {
	switch k {
	case KindMissingBody:
		return "missing_body"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindConfigMissing:
		return "config_missing"
	case KindInvalidProtocol:
		return "invalid_protocol"
	case KindChannelFailure:
		return "channel_failure"
	case KindStoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// DispatchError is the single error type returned by the dispatch
// procedure. Err holds the underlying cause for the kinds that have one.
type DispatchError struct {
	Kind Kind
	Err  error
}

func (e *DispatchError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Status maps the kind to its HTTP status code.
func (e *DispatchError) Status() int {
	switch e.Kind {
	case KindMissingBody, KindInvalidPayload, KindInvalidProtocol:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Body renders the plain-text response body for the kind.
func (e *DispatchError) Body() string {
	switch e.Kind {
	case KindMissingBody:
		return MessageMissingBody
	case KindInvalidPayload:
		return invalidPayloadPrefix + e.cause()
	case KindConfigMissing:
		return MessageConfigMissing
	case KindInvalidProtocol:
		return MessageInvalidProtocol
	default:
		return sendFailurePrefix + e.cause()
	}
}

func (e *DispatchError) cause() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func NewMissingBody() *DispatchError {
	return &DispatchError{Kind: KindMissingBody}
}

func NewInvalidPayload(err error) *DispatchError {
	return &DispatchError{Kind: KindInvalidPayload, Err: err}
}

func NewConfigMissing() *DispatchError {
	return &DispatchError{Kind: KindConfigMissing}
}

func NewInvalidProtocol(err error) *DispatchError {
	return &DispatchError{Kind: KindInvalidProtocol, Err: err}
}

func NewChannelFailure(err error) *DispatchError {
	return &DispatchError{Kind: KindChannelFailure, Err: err}
}

func NewStoreFailure(err error) *DispatchError {
	return &DispatchError{Kind: KindStoreFailure, Err: err}
}

// IsKind reports whether err, or anything it wraps, is a DispatchError of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
