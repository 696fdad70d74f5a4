package repository

import (
	"context"

	"temple-notify/internal/domain/entity"
)

// CalendarRepository provides read access to the Vaishnava festival
// calendar, which is maintained by a separate import process and grouped
// by (year, month).
type CalendarRepository interface {
	// EventsByYearMonth returns all calendar events recorded for the given
	// year and month, in stored order. The caller filters to the exact
	// target day; festival dates are year-specific, not recurring.
	EventsByYearMonth(ctx context.Context, year, month int) ([]entity.CalendarEvent, error)
}
