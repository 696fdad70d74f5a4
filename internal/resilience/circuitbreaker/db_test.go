package circuitbreaker

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
)

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)

	if dcb == nil {
		t.Fatal("expected non-nil DBCircuitBreaker")
	}
	if dcb.db != db {
		t.Error("expected db to be set")
	}
	if dcb.cb == nil {
		t.Error("expected circuit breaker to be set")
	}
	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state to be Closed, got %s", dcb.State())
	}
}

func TestDBCircuitBreaker_QueryContext_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"mobile", "fcm_token"}).
		AddRow("9876543210", "token-1")
	mock.ExpectQuery("SELECT (.+) FROM device_registrations").WillReturnRows(rows)

	result, err := dcb.QueryContext(ctx, "SELECT mobile, fcm_token FROM device_registrations WHERE mobile = $1", "9876543210")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = result.Close() }()

	if !result.Next() {
		t.Fatal("expected at least one row")
	}

	var mobile, token string
	if err := result.Scan(&mobile, &token); err != nil {
		t.Fatalf("failed to scan row: %v", err)
	}
	if mobile != "9876543210" || token != "token-1" {
		t.Errorf("unexpected row: mobile=%s, token=%s", mobile, token)
	}

	if dcb.State() != gobreaker.StateClosed {
		t.Errorf("expected state to remain Closed after success, got %s", dcb.State())
	}
}

func TestDBCircuitBreaker_ExecContext_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE device_registrations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := dcb.ExecContext(ctx, "UPDATE device_registrations SET fcm_token = '' WHERE mobile = $1", "9876543210")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		t.Fatalf("failed to read rows affected: %v", err)
	}
	if affected != 1 {
		t.Errorf("expected 1 row affected, got %d", affected)
	}
}

func TestDBCircuitBreaker_TripsOnRepeatedFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Short open timeout so the test does not dominate the suite
	dcb := NewDBCircuitBreakerWithConfig(db, Config{
		Name:             "store-test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Second,
		FailureThreshold: 1.0,
		MinRequests:      3,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT 1").WillReturnError(context.DeadlineExceeded)
		if _, err := dcb.QueryContext(ctx, "SELECT 1"); err == nil {
			t.Fatalf("query %d: expected an error", i)
		}
	}

	if dcb.State() != gobreaker.StateOpen {
		t.Fatalf("expected state=Open after repeated failures, got %s", dcb.State())
	}

	// Open circuit fails fast without reaching the store; no further
	// mock expectation is consumed
	if _, err := dcb.QueryContext(ctx, "SELECT 1"); err != gobreaker.ErrOpenState {
		t.Errorf("expected ErrOpenState, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDBCircuitBreaker_PingContext(t *testing.T) {
	db, mock, err := sqlmock.NewWithDSN("ping-dsn", sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	ctx := context.Background()

	mock.ExpectPing()

	if err := dcb.PingContext(ctx); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
