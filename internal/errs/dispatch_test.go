package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDispatchErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        *DispatchError
		wantStatus int
		wantBody   string
	}{
		{"MissingBody", NewMissingBody(), http.StatusBadRequest, "Request body is missing."},
		{"InvalidPayload", NewInvalidPayload(errors.New("unexpected end of JSON input")), http.StatusBadRequest, "Invalid JSON format: unexpected end of JSON input"},
		{"ConfigMissing", NewConfigMissing(), http.StatusInternalServerError, "SNS_TOPIC_ARN environment variable not set."},
		{"InvalidProtocol", NewInvalidProtocol(nil), http.StatusBadRequest, "Invalid protocol. Must be EMAIL, SMS, or PUSH."},
		{"ChannelFailure", NewChannelFailure(errors.New("topic does not exist")), http.StatusInternalServerError, "Error sending notification: topic does not exist"},
		{"StoreFailure", NewStoreFailure(errors.New("connection refused")), http.StatusInternalServerError, "Error sending notification: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.wantStatus {
				t.Errorf("Status() = %d, want %d", got, tt.wantStatus)
			}
			if got := tt.err.Body(); got != tt.wantBody {
				t.Errorf("Body() = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("dispatch: %w", NewStoreFailure(cause))

	if !IsKind(err, KindStoreFailure) {
		t.Error("IsKind() = false, want true for wrapped store failure")
	}
	if IsKind(err, KindChannelFailure) {
		t.Error("IsKind() = true, want false for a different kind")
	}
	if IsKind(cause, KindStoreFailure) {
		t.Error("IsKind() = true, want false for a plain error")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should reach the underlying cause")
	}
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	if got := MakeUpperCaseWithUnderscores("Service Unavailable"); got != "SERVICE_UNAVAILABLE" {
		t.Errorf("MakeUpperCaseWithUnderscores() = %q, want %q", got, "SERVICE_UNAVAILABLE")
	}
}
