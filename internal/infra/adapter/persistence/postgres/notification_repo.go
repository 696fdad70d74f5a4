package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/repository"
)

// pgUniqueViolation is the Postgres error code for a unique constraint
// violation, raised by the composite key index on notification_records.
const pgUniqueViolation = "23505"

// NotificationRepo is the Postgres-backed dedup ledger. The composite
// natural key (kind, topic, slot, event_date, event_id) is covered by a
// unique index, so at-most-once delivery holds even if two runs of the
// same slot race each other.
type NotificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) repository.NotificationLedger {
	return &NotificationRepo{db: db}
}

func (repo *NotificationRepo) Exists(ctx context.Context, key entity.NotificationKey) (bool, error) {
	const query = `
SELECT 1
FROM notification_records
WHERE kind = $1 AND topic = $2 AND slot = $3 AND event_date = $4 AND event_id = $5
LIMIT 1`
	var one int
	err := repo.db.QueryRowContext(ctx, query,
		key.Kind, key.Topic, key.Slot, key.EventDate, key.EventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return true, nil
}

func (repo *NotificationRepo) CreateLeaf(ctx context.Context, rec *entity.NotificationRecord) error {
	const query = `
INSERT INTO notification_records (kind, topic, slot, event_date, event_id, status, message_id, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`
	_, err := repo.db.ExecContext(ctx, query,
		rec.Key.Kind, rec.Key.Topic, rec.Key.Slot, rec.Key.EventDate, rec.Key.EventID,
		rec.Status, nullIfEmpty(rec.MessageID), nullIfEmpty(rec.Error))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrDuplicateRecord
		}
		return fmt.Errorf("CreateLeaf: %w", err)
	}
	return nil
}

func (repo *NotificationRepo) UpsertSummary(ctx context.Context, rec *entity.NotificationRecord) error {
	const query = `
INSERT INTO notification_records (kind, topic, slot, event_date, event_id, status, stats, details, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
ON CONFLICT (kind, topic, slot, event_date, event_id)
DO UPDATE SET status = EXCLUDED.status, stats = EXCLUDED.stats, details = EXCLUDED.details, updated_at = NOW()`
	_, err := repo.db.ExecContext(ctx, query,
		rec.Key.Kind, rec.Key.Topic, rec.Key.Slot, rec.Key.EventDate, rec.Key.EventID,
		rec.Status, []byte(rec.Stats), []byte(rec.Details))
	if err != nil {
		return fmt.Errorf("UpsertSummary: %w", err)
	}
	return nil
}

// Ping verifies store connectivity through the injected executor. It uses
// QueryContext rather than QueryRowContext so a breaker-wrapped handle
// observes the outcome and fails fast when the circuit is already open.
func (repo *NotificationRepo) Ping(ctx context.Context) error {
	const query = `SELECT 1`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
