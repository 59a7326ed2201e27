package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/deppfellow/notify-dispatch/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// querier is the part of *pgxpool.Pool the store needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUsageStore keeps usage in a table created by the tern migration.
type PostgresUsageStore struct {
	db        querier
	upsertSQL string
	getSQL    string
}

// NewPostgresUsageStore builds the store for table. The name is quoted as
// an identifier, so any configured value is safe to interpolate.
func NewPostgresUsageStore(db querier, table string) *PostgresUsageStore {
	ident := pgx.Identifier{table}.Sanitize()

	return &PostgresUsageStore{
		db: db,
		upsertSQL: fmt.Sprintf(`
			INSERT INTO %s AS u (protocol, counter, subject, message, updated_at)
			VALUES ($1, 1, $2, $3, now())
			ON CONFLICT (protocol) DO UPDATE
			SET counter    = u.counter + 1,
			    subject    = EXCLUDED.subject,
			    message    = EXCLUDED.message,
			    updated_at = EXCLUDED.updated_at
			RETURNING protocol, counter, subject, message, updated_at`, ident),
		getSQL: fmt.Sprintf(`
			SELECT protocol, counter, subject, message, updated_at
			FROM %s
			WHERE protocol = $1`, ident),
	}
}

func (s *PostgresUsageStore) Upsert(ctx context.Context, protocol model.Protocol, subject, message string) (*model.UsageRecord, error) {
	rec, err := scanUsage(s.db.QueryRow(ctx, s.upsertSQL, protocol.String(), subject, message))
	if err != nil {
		return nil, errors.WithStack(sqlerr.Classify(err))
	}
	return rec, nil
}

func (s *PostgresUsageStore) Get(ctx context.Context, protocol model.Protocol) (*model.UsageRecord, error) {
	rec, err := scanUsage(s.db.QueryRow(ctx, s.getSQL, protocol.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUsageNotFound
	}
	if err != nil {
		return nil, errors.WithStack(sqlerr.Classify(err))
	}
	return rec, nil
}

func scanUsage(row pgx.Row) (*model.UsageRecord, error) {
	var (
		rec      model.UsageRecord
		protocol string
	)
	if err := row.Scan(&protocol, &rec.Counter, &rec.Subject, &rec.Message, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Protocol = model.Protocol(protocol)
	return &rec, nil
}
