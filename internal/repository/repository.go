// Package repository holds the usage store: one counter record per
// protocol, plus the subject and message of the last dispatch.
//
// Three backends implement UsageStore. Each performs the increment as a
// single atomic operation on the store side, so callers never lock.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/notify-dispatch/internal/model"
)

// ErrUsageNotFound is returned by Get when no dispatch has been recorded
// for the protocol yet.
var ErrUsageNotFound = errors.New("usage record not found")

// UsageStore persists per-protocol usage.
type UsageStore interface {
	// Upsert increments the protocol's counter by one, creating it at 1
	// when absent, and overwrites subject and message. It returns the
	// record as stored after the update.
	Upsert(ctx context.Context, protocol model.Protocol, subject, message string) (*model.UsageRecord, error)
	// Get returns the current record or ErrUsageNotFound.
	Get(ctx context.Context, protocol model.Protocol) (*model.UsageRecord, error)
}
