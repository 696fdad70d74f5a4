package repository

import (
	"context"

	"temple-notify/internal/domain/entity"
)

// MemberRepository provides read access to member records for occasion
// resolution. Both listing methods are projection queries: they return only
// the fields the resolver needs and exclude rows whose relevant date field
// is null, so year-independent matching happens over a pre-filtered set.
type MemberRepository interface {
	// ListWithBirthDates returns every member with a non-null date of
	// birth, including spouse and children sub-records (which may carry
	// birth dates of their own). Order is the stable scan order of the
	// underlying store.
	ListWithBirthDates(ctx context.Context) ([]*entity.Member, error)

	// ListWithMarriageDates returns every member with a non-null date of
	// marriage.
	ListWithMarriageDates(ctx context.Context) ([]*entity.Member, error)
}
