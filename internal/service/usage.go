package service

import (
	"context"
	"errors"

	"github.com/deppfellow/notify-dispatch/internal/errs"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/repository"
	"github.com/deppfellow/notify-dispatch/internal/sqlerr"
)

type UsageService struct {
	usage repository.UsageStore
}

func NewUsageService(usage repository.UsageStore) *UsageService {
	return &UsageService{usage: usage}
}

// Get returns the usage record for protocol. A missing record is a 404
// with code USAGE_NOT_FOUND; store errors go through sqlerr.
func (s *UsageService) Get(ctx context.Context, protocol model.Protocol) (*model.UsageRecord, error) {
	rec, err := s.usage.Get(ctx, protocol)
	if errors.Is(err, repository.ErrUsageNotFound) {
		code := "USAGE_NOT_FOUND"
		return nil, errs.NewNotFoundError("No notifications recorded for "+protocol.String(), false, &code)
	}
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return rec, nil
}
