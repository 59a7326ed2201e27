package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/deppfellow/notify-dispatch/internal/middleware"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// maxBodyBytes bounds the request body read by the echo adapter. It matches
// the router's BodyLimit so both layers reject at the same size.
const maxBodyBytes = 1 << 20

// Request is the transport-neutral inbound request.
type Request struct {
	Body string `json:"body"`
}

// Response is the transport-neutral outbound response. On 200 Body is the
// JSON-encoded confirmation string; otherwise it is plain text.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Dispatcher runs the notification procedure.
type Dispatcher interface {
	Dispatch(ctx context.Context, body string) (*model.DispatchResult, error)
}

type NotificationHandler struct {
	Handler
	dispatcher Dispatcher
}

func NewNotificationHandler(s *server.Server, dispatcher Dispatcher) *NotificationHandler {
	return &NotificationHandler{
		Handler:    NewHandler(s),
		dispatcher: dispatcher,
	}
}

// Handle runs one notification request end to end. It never fails: every
// outcome is expressed as a Response.
func (h *NotificationHandler) Handle(ctx context.Context, req Request) Response {
	result, err := h.dispatcher.Dispatch(ctx, req.Body)

	if txn := newrelic.FromContext(ctx); txn != nil {
		if err != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		} else {
			txn.AddAttribute("notification.protocol", result.Protocol.String())
			txn.AddAttribute("notification.message_id", result.MessageID)
		}
	}

	return respond(result, err)
}

// respond is the only place dispatch outcomes become status and body.
func respond(result *model.DispatchResult, err error) Response {
	if err != nil {
		var de *errs.DispatchError
		if !errors.As(err, &de) {
			de = errs.NewChannelFailure(err)
		}
		return Response{StatusCode: de.Status(), Body: de.Body()}
	}

	body, err := json.Marshal(result.Confirmation)
	if err != nil {
		de := errs.NewChannelFailure(err)
		return Response{StatusCode: de.Status(), Body: de.Body()}
	}

	return Response{StatusCode: http.StatusOK, Body: string(body)}
}

// SendNotification is the echo adapter for POST /api/v1/notifications.
// The body is passed through raw; JSON errors are the dispatcher's to
// report.
func (h *NotificationHandler) SendNotification(c echo.Context) error {
	// One byte past the limit tells an oversized body from one that fits.
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			return err
		}
		middleware.GetLogger(c).Warn().Err(err).Msg("failed to read request body")
		return errs.NewBadRequestError("Failed to read request body", false, nil, nil)
	}
	if len(raw) > maxBodyBytes {
		return errs.NewRequestEntityTooLargeError("Request body exceeds 1MB")
	}

	resp := h.Handle(c.Request().Context(), Request{Body: string(raw)})

	contentType := echo.MIMETextPlainCharsetUTF8
	if resp.StatusCode == http.StatusOK {
		contentType = echo.MIMEApplicationJSON
	}

	return c.Blob(resp.StatusCode, contentType, []byte(resp.Body))
}
