package entity

import "temple-notify/internal/pkg/localdate"

// Relation describes how a resolved recipient relates to the member record
// they were derived from.
type Relation string

const (
	RelationPrimary Relation = "primary"
	RelationSpouse  Relation = "spouse"
	RelationChild   Relation = "child"
)

// Recipient is one entry in the set of people to notify for an occasion.
// Recipients are computed per run, never persisted.
//
// Mobile may be empty for dependents: such recipients still appear in the
// topic broadcast by name but are skipped by the personal send lane.
type Recipient struct {
	DisplayName  string
	Mobile       string
	OccasionDate localdate.LocalDate
	Relation     Relation
	SourceMobile string
}

// DedupKey returns the in-run identity of the recipient: the mobile number
// when present, otherwise the normalized display name. Two recipients with
// the same key are the same person reached via different records.
func (r *Recipient) DedupKey() string {
	if r.Mobile != "" {
		return "m:" + r.Mobile
	}
	return "n:" + NormalizeName(r.DisplayName)
}
