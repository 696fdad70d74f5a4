package repository

import "context"

// DeviceRepository provides access to device registrations: the mapping
// from a member's mobile number to their current push token.
type DeviceRepository interface {
	// TokensByMobile returns the current non-empty push token for each of
	// the given mobile numbers. Mobiles without a registration or with a
	// cleared token are absent from the result.
	TokensByMobile(ctx context.Context, mobiles []string) (map[string]string, error)

	// RegisteredMobiles returns the subset of the given mobile numbers
	// that have a device registration, regardless of token state. Used to
	// detect dependents who hold an account of their own.
	RegisteredMobiles(ctx context.Context, mobiles []string) (map[string]bool, error)

	// ClearToken empties the stored push token for a mobile number.
	// Called when the push gateway reports the token permanently invalid.
	ClearToken(ctx context.Context, mobile string) error
}
