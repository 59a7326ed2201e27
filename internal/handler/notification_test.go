package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/notify-dispatch/internal/config"
	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type fakeDispatcher struct {
	gotBody string
	result  *model.DispatchResult
	err     error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, body string) (*model.DispatchResult, error) {
	f.gotBody = body
	return f.result, f.err
}

func newTestServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &log,
	}
}

func TestNotificationHandler_Handle(t *testing.T) {
	arn := "arn:aws:sns:us-east-1:123456789012:sms"
	ok := &model.DispatchResult{
		Protocol:     model.ProtocolSMS,
		ChannelID:    arn,
		Confirmation: "Notification successfully sent to SNS topic: " + arn,
	}

	tests := []struct {
		name       string
		result     *model.DispatchResult
		err        error
		wantStatus int
		wantBody   string
	}{
		{"Success", ok, nil, 200, `"Notification successfully sent to SNS topic: ` + arn + `"`},
		{"MissingBody", nil, errs.NewMissingBody(), 400, "Request body is missing."},
		{"InvalidPayload", nil, errs.NewInvalidPayload(errors.New("unexpected end of JSON input")), 400, "Invalid JSON format: unexpected end of JSON input"},
		{"ConfigMissing", nil, errs.NewConfigMissing(), 500, "SNS_TOPIC_ARN environment variable not set."},
		{"InvalidProtocol", nil, errs.NewInvalidProtocol(nil), 400, "Invalid protocol. Must be EMAIL, SMS, or PUSH."},
		{"ChannelFailure", nil, errs.NewChannelFailure(errors.New("AuthorizationError")), 500, "Error sending notification: AuthorizationError"},
		{"StoreFailure", nil, errs.NewStoreFailure(errors.New("throttled")), 500, "Error sending notification: throttled"},
		{"UntypedError", nil, errors.New("unexpected"), 500, "Error sending notification: unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewNotificationHandler(newTestServer(), &fakeDispatcher{result: tt.result, err: tt.err})

			resp := h.Handle(context.Background(), Request{Body: `{"protocol":"SMS"}`})
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", resp.Body, tt.wantBody)
			}
		})
	}
}

func TestNotificationHandler_SendNotification(t *testing.T) {
	tests := []struct {
		name            string
		dispatcher      *fakeDispatcher
		wantStatus      int
		wantContentType string
	}{
		{
			name:            "Success",
			dispatcher:      &fakeDispatcher{result: &model.DispatchResult{Confirmation: "done"}},
			wantStatus:      http.StatusOK,
			wantContentType: echo.MIMEApplicationJSON,
		},
		{
			name:            "Rejected",
			dispatcher:      &fakeDispatcher{err: errs.NewInvalidProtocol(nil)},
			wantStatus:      http.StatusBadRequest,
			wantContentType: echo.MIMETextPlainCharsetUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewNotificationHandler(newTestServer(), tt.dispatcher)

			e := echo.New()
			body := `{"subject":"Hi","protocol":"SMS"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(body))
			rec := httptest.NewRecorder()

			if err := h.SendNotification(e.NewContext(req, rec)); err != nil {
				t.Fatalf("SendNotification() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get(echo.HeaderContentType); got != tt.wantContentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantContentType)
			}
			if tt.dispatcher.gotBody != body {
				t.Errorf("dispatcher got %q, want the raw body %q", tt.dispatcher.gotBody, body)
			}
		})
	}
}

func TestNotificationHandler_SendNotification_BodyTooLarge(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		wantStatus int
	}{
		{"AtLimit", maxBodyBytes, http.StatusOK},
		{"OverLimit", maxBodyBytes + 1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{result: &model.DispatchResult{Confirmation: "done"}}
			h := NewNotificationHandler(newTestServer(), dispatcher)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(strings.Repeat("a", tt.size)))
			rec := httptest.NewRecorder()

			err := h.SendNotification(e.NewContext(req, rec))
			if tt.wantStatus == http.StatusOK {
				if err != nil {
					t.Fatalf("SendNotification() error = %v", err)
				}
				if len(dispatcher.gotBody) != tt.size {
					t.Errorf("dispatcher got %d bytes, want %d", len(dispatcher.gotBody), tt.size)
				}
				return
			}

			var httpErr *errs.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Status != tt.wantStatus {
				t.Fatalf("SendNotification() error = %v, want HTTPError %d", err, tt.wantStatus)
			}
			if dispatcher.gotBody != "" {
				t.Error("dispatcher called for an oversized body")
			}
		})
	}
}
