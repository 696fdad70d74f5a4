package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/repository"
)

// CalendarRepo provides read access to the imported Vaishnava calendar.
type CalendarRepo struct {
	db DBTX
}

func NewCalendarRepo(db DBTX) repository.CalendarRepository {
	return &CalendarRepo{db: db}
}

func (repo *CalendarRepo) EventsByYearMonth(ctx context.Context, year, month int) ([]entity.CalendarEvent, error) {
	const query = `
SELECT event_date, event, description
FROM calendar_events
WHERE year = $1 AND month = $2
ORDER BY event_date, id`
	rows, err := repo.db.QueryContext(ctx, query, year, month)
	if err != nil {
		return nil, fmt.Errorf("EventsByYearMonth: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]entity.CalendarEvent, 0, 16)
	for rows.Next() {
		var event entity.CalendarEvent
		var description sql.NullString
		if err := rows.Scan(&event.Date, &event.Event, &description); err != nil {
			return nil, fmt.Errorf("EventsByYearMonth: Scan: %w", err)
		}
		event.Description = description.String
		events = append(events, event)
	}
	return events, rows.Err()
}
