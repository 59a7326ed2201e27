package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type lookupRequest struct {
	Protocol string `param:"protocol" validate:"required,oneof=EMAIL SMS PUSH"`
	Limit    int    `query:"limit" validate:"min=0,max=10"`
}

func (r *lookupRequest) Validate() error {
	return validator.New().Struct(r)
}

func newContext(method, target, body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		protocol   string
		query      string
		wantErr    bool
		wantFields []string
	}{
		{"Valid", "SMS", "", false, nil},
		{"UnknownProtocol", "FAX", "", true, []string{"protocol"}},
		{"LowerCase", "sms", "", true, []string{"protocol"}},
		{"LimitTooHigh", "PUSH", "?limit=11", true, []string{"limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(http.MethodGet, "/api/v1/usage/"+tt.protocol+tt.query, "")
			c.SetParamNames("protocol")
			c.SetParamValues(tt.protocol)

			req := &lookupRequest{}
			err := BindAndValidate(c, req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BindAndValidate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if req.Protocol != tt.protocol {
					t.Errorf("Protocol = %q, want %q", req.Protocol, tt.protocol)
				}
				return
			}

			var httpErr *errs.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("BindAndValidate() error type = %T, want *errs.HTTPError", err)
			}
			if httpErr.Status != http.StatusBadRequest {
				t.Errorf("Status = %d, want %d", httpErr.Status, http.StatusBadRequest)
			}
			if len(httpErr.Errors) != len(tt.wantFields) {
				t.Fatalf("len(Errors) = %d, want %d", len(httpErr.Errors), len(tt.wantFields))
			}
			for i, f := range tt.wantFields {
				if httpErr.Errors[i].Field != f {
					t.Errorf("Errors[%d].Field = %q, want %q", i, httpErr.Errors[i].Field, f)
				}
			}
		})
	}
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	c := newContext(http.MethodPost, "/", `{"protocol":`)

	err := BindAndValidate(c, &lookupRequest{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("BindAndValidate() error type = %T, want *errs.HTTPError", err)
	}
	if httpErr.Status != http.StatusBadRequest || httpErr.Override {
		t.Errorf("got status %d override %v, want 400 false", httpErr.Status, httpErr.Override)
	}
	if httpErr.Message == "" {
		t.Error("Message should not be empty")
	}
}

func TestExtractFieldErrors_Custom(t *testing.T) {
	err := CustomValidationErrors{{Field: "channel", Message: "is not configured"}}

	msg, fields := ExtractFieldErrors(err)
	if msg != "Validation failed" {
		t.Errorf("msg = %q, want %q", msg, "Validation failed")
	}
	if len(fields) != 1 || fields[0].Field != "channel" || fields[0].Error != "is not configured" {
		t.Errorf("fields = %+v", fields)
	}
}

func TestExtractFieldErrors_Plain(t *testing.T) {
	msg, fields := ExtractFieldErrors(errors.New("boom"))
	if msg != "boom" || fields != nil {
		t.Errorf("ExtractFieldErrors() = %q, %v, want %q, nil", msg, fields, "boom")
	}
}
