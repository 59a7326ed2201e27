package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the request correlation id in both
	// directions.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the echo context key the id is stored under.
	RequestIDKey = "request_id"

	// maxRequestIDLength caps ids taken from clients before they reach logs.
	maxRequestIDLength = 128
)

// RequestID returns a middleware that makes sure each request has an id.
//
// Behavior:
//   - An incoming X-Request-ID is reused if it is at most 128 bytes.
//   - Otherwise a new UUID is generated.
//   - The id is stored in the echo context for the logger and tracing
//     middleware, and set on the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}

			c.Set(RequestIDKey, requestID)

			// Echoed back so callers (API Gateway, clients) can quote it when
			// reporting a failed notification.
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request id, or "" when RequestID did not run.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
