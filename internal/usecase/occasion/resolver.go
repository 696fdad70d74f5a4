// Package occasion resolves which people or calendar events should be
// notified for a given calendar day: birthdays and wedding anniversaries
// by year-independent month-day matching over member records, festivals by
// exact-date lookup in the Vaishnava calendar.
package occasion

import (
	"context"
	"fmt"
	"time"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/pkg/localdate"
	"temple-notify/internal/repository"
)

// Resolver computes the recipient set for each occasion kind.
// It reads members, device registrations, and the calendar; it never
// writes anything.
type Resolver struct {
	Members  repository.MemberRepository
	Devices  repository.DeviceRepository
	Calendar repository.CalendarRepository
	Zone     *time.Location
}

// NewResolver creates a Resolver operating in the given timezone.
// All month-day matching converts stored instants to this zone first.
func NewResolver(
	members repository.MemberRepository,
	devices repository.DeviceRepository,
	calendar repository.CalendarRepository,
	zone *time.Location,
) *Resolver {
	return &Resolver{
		Members:  members,
		Devices:  devices,
		Calendar: calendar,
		Zone:     zone,
	}
}

// ResolveFestivals returns the calendar events falling exactly on the
// target date, along with the number of candidate events examined for the
// month. Festival dates are year-specific: no recurring match is applied.
func (r *Resolver) ResolveFestivals(ctx context.Context, target localdate.LocalDate) ([]entity.CalendarEvent, int, error) {
	events, err := r.Calendar.EventsByYearMonth(ctx, target.Year, int(target.Month))
	if err != nil {
		return nil, 0, fmt.Errorf("ResolveFestivals: %w", err)
	}

	matched := make([]entity.CalendarEvent, 0, len(events))
	for _, event := range events {
		if localdate.FromTime(event.Date, r.Zone) == target {
			matched = append(matched, event)
		}
	}
	return matched, len(events), nil
}

// monthDayKey returns the year-independent "MM-DD" key of an instant in
// the resolver's zone, or "" for a nil date. A missing or unparseable
// date excludes a record from matching; it is never an error.
func (r *Resolver) monthDayKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return localdate.FromTime(*t, r.Zone).MonthDay()
}

// localDateKey returns the full "YYYY-MM-DD" date of an instant in the
// resolver's zone, used for exact-date matching of dependents.
func (r *Resolver) localDateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return localdate.FromTime(*t, r.Zone).String()
}
