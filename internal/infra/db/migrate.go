package db

import (
	"database/sql"
)

// MigrateUp creates the schema: the member roster, device registrations,
// the imported Vaishnava calendar, and the notification ledger. All
// statements are idempotent so the migration can run at every boot.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS members (
    id               BIGSERIAL PRIMARY KEY,
    name             TEXT NOT NULL,
    initiation_name  TEXT,
    gender           VARCHAR(10),
    mobile           VARCHAR(20),
    date_of_birth    DATE,
    date_of_marriage DATE,
    spouse_mobile    VARCHAR(20),
    spouse           JSONB,
    children         JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS device_registrations (
    id          BIGSERIAL PRIMARY KEY,
    mobile      VARCHAR(20) NOT NULL UNIQUE,
    fcm_token   TEXT NOT NULL DEFAULT '',
    device_type VARCHAR(20),
    app_version VARCHAR(20),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS calendar_events (
    id          BIGSERIAL PRIMARY KEY,
    year        INT NOT NULL,
    month       INT NOT NULL,
    event_date  DATE NOT NULL,
    event       TEXT NOT NULL,
    description TEXT
)`); err != nil {
		return err
	}

	// The composite natural key backs the dedup ledger: the unique index
	// is what makes sending at-most-once under concurrent runs.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notification_records (
    id         BIGSERIAL PRIMARY KEY,
    kind       VARCHAR(40) NOT NULL,
    topic      VARCHAR(20) NOT NULL,
    slot       VARCHAR(20) NOT NULL,
    event_date DATE NOT NULL,
    event_id   TEXT NOT NULL,
    status     VARCHAR(20) NOT NULL,
    message_id TEXT,
    error      TEXT,
    stats      JSONB,
    details    JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (kind, topic, slot, event_date, event_id)
)`); err != nil {
		return err
	}

	indexes := []string{
		// birthday/anniversary resolution scans by presence of dates
		`CREATE INDEX IF NOT EXISTS idx_members_date_of_birth ON members(date_of_birth) WHERE date_of_birth IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_members_date_of_marriage ON members(date_of_marriage) WHERE date_of_marriage IS NOT NULL`,
		// festival resolution filters by (year, month)
		`CREATE INDEX IF NOT EXISTS idx_calendar_events_year_month ON calendar_events(year, month)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the schema in reverse order of creation.
// Use with caution: this deletes all data, including the dedup ledger.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS notification_records`,
		`DROP TABLE IF EXISTS calendar_events`,
		`DROP TABLE IF EXISTS device_registrations`,
		`DROP TABLE IF EXISTS members`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
