package entity

import (
	"encoding/json"
	"time"
)

// Occasion kinds. The personal-lane kinds carry the "_personal" suffix so
// broadcast and personal outcomes for the same person never collide in the
// ledger key space.
const (
	KindBirthday    = "birthday"
	KindAnniversary = "anniversary"
	KindFestival    = "festival"

	PersonalKindSuffix = "_personal"
)

// Ledger topics. TopicFestivals is the single FCM topic every subscriber
// receives broadcasts on; TopicToken marks personal token sends; TopicRun
// marks whole-run summary records.
const (
	TopicFestivals = "festivals"
	TopicToken     = "token"
	TopicRun       = "run"
)

// Notification record statuses.
const (
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

// EventIDSummary is the event ID used for single-broadcast occasions
// (birthdays, anniversaries) and for run summary records. Festival
// broadcasts use the festival name instead, one record per event.
const EventIDSummary = "summary"

// NotificationKey is the composite natural key of a ledger record.
// Uniqueness over all five fields is enforced by the store; the struct is
// comparable so the same invariant holds at compile time for in-process
// lookups.
type NotificationKey struct {
	Kind      string
	Topic     string
	Slot      string
	EventDate string // "YYYY-MM-DD" in the product timezone
	EventID   string
}

// NotificationRecord is one durable ledger entry: a leaf outcome (topic
// broadcast or personal send) or a whole-run summary. Leaf records are
// created once and never mutated; summary records are upserted, one row
// per key, overwritten each run.
type NotificationRecord struct {
	ID        int64
	Key       NotificationKey
	Status    string
	MessageID string
	Error     string
	Stats     json.RawMessage
	Details   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CalendarEvent is one festival entry from the Vaishnava calendar,
// grouped in the store by (year, month) of its date.
type CalendarEvent struct {
	Date        time.Time
	Event       string
	Description string
}
