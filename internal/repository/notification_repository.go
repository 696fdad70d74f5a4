package repository

import (
	"context"
	"errors"

	"temple-notify/internal/domain/entity"
)

// ErrDuplicateRecord is returned by CreateLeaf when a record with the same
// composite key already exists. Callers treat it as an already-processed
// skip, never as a failure: the storage-level unique constraint is the
// last line of defense against double sends, not the primary check.
var ErrDuplicateRecord = errors.New("notification record already exists")

// NotificationLedger is the durable dedup ledger. Every notification
// attempt — topic broadcast, personal send, or whole-run summary — leaves
// exactly one record keyed by (kind, topic, slot, eventDate, eventID).
type NotificationLedger interface {
	// Exists reports whether a record with the given key is already
	// present. Dispatchers call this before every send.
	Exists(ctx context.Context, key entity.NotificationKey) (bool, error)

	// CreateLeaf inserts a leaf outcome record (status sent or failed).
	// Returns ErrDuplicateRecord if the key is already taken; leaf records
	// are never updated after creation.
	CreateLeaf(ctx context.Context, rec *entity.NotificationRecord) error

	// UpsertSummary writes a whole-run summary record (status completed),
	// replacing any previous summary for the same key. Safe to call
	// repeatedly; last write wins.
	UpsertSummary(ctx context.Context, rec *entity.NotificationRecord) error

	// Ping verifies store connectivity. A failed ping aborts the run
	// before any send is attempted.
	Ping(ctx context.Context) error
}
