// Package service contains the business logic.
//
// It sits between the handlers and the repository and channel layers.
// NotificationService runs the dispatch procedure; UsageService serves the
// read side of the usage counters.
package service

import (
	"context"

	"github.com/rs/zerolog"
)

// loggerFrom prefers the request-scoped logger stored on ctx by the
// context middleware and falls back to base.
func loggerFrom(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return base
}
