// Package localdate provides a timezone-anchored calendar date value type.
// All occasion matching in the system is done against calendar dates in the
// community's fixed local timezone, never against raw instants, so the rest
// of the codebase works with LocalDate instead of time.Time wherever only
// the calendar day matters.
package localdate

import (
	"fmt"
	"time"
)

// ProductZone is the IANA timezone the community operates in.
// Stored instants are converted to this zone before any date comparison.
const ProductZone = "Asia/Kolkata"

// LocalDate is a calendar date without a time component.
// The zero value is not a valid date.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime converts an instant to the calendar date it falls on in loc.
func FromTime(t time.Time, loc *time.Location) LocalDate {
	y, m, d := t.In(loc).Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) LocalDate {
	return FromTime(time.Now(), loc)
}

// Parse parses a date in "YYYY-MM-DD" form.
func Parse(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("parse local date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}, nil
}

// String formats the date as "YYYY-MM-DD".
// This is the canonical persisted form of event dates.
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthDay returns the year-independent "MM-DD" key used for recurring
// occasion matching (birthdays and anniversaries recur every year).
func (d LocalDate) MonthDay() string {
	return fmt.Sprintf("%02d-%02d", int(d.Month), d.Day)
}

// AddDays returns the date shifted by the given number of days.
// The arithmetic is done at UTC noon so DST transitions cannot skip a day.
func (d LocalDate) AddDays(days int) LocalDate {
	t := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	y, m, day := t.Date()
	return LocalDate{Year: y, Month: m, Day: day}
}

// IsZero reports whether the date is the zero value.
func (d LocalDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Zone loads the product timezone. It panics on failure because a binary
// without tzdata for the product zone cannot operate correctly at all.
func Zone() *time.Location {
	loc, err := time.LoadLocation(ProductZone)
	if err != nil {
		panic(fmt.Sprintf("load product timezone %s: %v", ProductZone, err))
	}
	return loc
}
