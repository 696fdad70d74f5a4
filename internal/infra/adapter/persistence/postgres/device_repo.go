package postgres

import (
	"context"
	"fmt"

	"temple-notify/internal/repository"
)

// DeviceRepo provides access to device registrations.
type DeviceRepo struct {
	db DBTX
}

func NewDeviceRepo(db DBTX) repository.DeviceRepository {
	return &DeviceRepo{db: db}
}

func (repo *DeviceRepo) TokensByMobile(ctx context.Context, mobiles []string) (map[string]string, error) {
	tokens := make(map[string]string, len(mobiles))
	if len(mobiles) == 0 {
		return tokens, nil
	}

	placeholders, args := inPlaceholders(mobiles, 1)
	query := fmt.Sprintf(`
SELECT mobile, fcm_token
FROM device_registrations
WHERE fcm_token <> '' AND mobile IN (%s)`, placeholders)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("TokensByMobile: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var mobile, token string
		if err := rows.Scan(&mobile, &token); err != nil {
			return nil, fmt.Errorf("TokensByMobile: Scan: %w", err)
		}
		tokens[mobile] = token
	}
	return tokens, rows.Err()
}

func (repo *DeviceRepo) RegisteredMobiles(ctx context.Context, mobiles []string) (map[string]bool, error) {
	registered := make(map[string]bool, len(mobiles))
	if len(mobiles) == 0 {
		return registered, nil
	}

	placeholders, args := inPlaceholders(mobiles, 1)
	query := fmt.Sprintf(`
SELECT mobile
FROM device_registrations
WHERE mobile IN (%s)`, placeholders)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("RegisteredMobiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var mobile string
		if err := rows.Scan(&mobile); err != nil {
			return nil, fmt.Errorf("RegisteredMobiles: Scan: %w", err)
		}
		registered[mobile] = true
	}
	return registered, rows.Err()
}

// ClearToken empties the stored push token for a mobile number. Clearing a
// mobile without a registration is a no-op, not an error.
func (repo *DeviceRepo) ClearToken(ctx context.Context, mobile string) error {
	const query = `
UPDATE device_registrations
SET fcm_token = '', updated_at = NOW()
WHERE mobile = $1`
	if _, err := repo.db.ExecContext(ctx, query, mobile); err != nil {
		return fmt.Errorf("ClearToken: %w", err)
	}
	return nil
}
