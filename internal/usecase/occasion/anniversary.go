package occasion

import (
	"context"
	"fmt"
	"strings"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/pkg/localdate"
)

// AnniversaryEntry is one member whose wedding anniversary falls today,
// together with the fields PairForBroadcast needs to merge spouse pairs.
type AnniversaryEntry struct {
	Recipient    entity.Recipient
	Gender       string
	SpouseMobile string
}

// ResolveAnniversaries computes today's anniversary celebrants: every
// member whose marriage date matches today's month-day key. Each spouse
// who is registered as a member appears as their own entry; the personal
// send lane wishes both, while the broadcast lane merges mutual pairs
// via PairForBroadcast. The second return value is the number of member
// records scanned.
func (r *Resolver) ResolveAnniversaries(ctx context.Context, today localdate.LocalDate) ([]AnniversaryEntry, int, error) {
	members, err := r.Members.ListWithMarriageDates(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("ResolveAnniversaries: %w", err)
	}

	todayKey := today.MonthDay()

	entries := make([]AnniversaryEntry, 0, 4)
	added := make(map[string]bool)

	for _, m := range members {
		if r.monthDayKey(m.DateOfMarriage) != todayKey {
			continue
		}
		name := m.PreferredName()
		if name == "" {
			continue
		}
		rec := entity.Recipient{
			DisplayName:  name + " " + m.HonorificSuffix(),
			Mobile:       strings.TrimSpace(m.Mobile),
			OccasionDate: today,
			Relation:     entity.RelationPrimary,
			SourceMobile: strings.TrimSpace(m.Mobile),
		}
		if added[rec.DedupKey()] {
			continue
		}
		added[rec.DedupKey()] = true
		entries = append(entries, AnniversaryEntry{
			Recipient:    rec,
			Gender:       m.Gender,
			SpouseMobile: strings.TrimSpace(m.SpouseMobile),
		})
	}

	return entries, len(members), nil
}

// PairForBroadcast merges mutually-referencing spouse entries into one
// combined "A & B" display entry for the topic broadcast, leaving
// unpaired entries as-is. Two entries pair when each lists the other's
// mobile as their spouse mobile; each pair is emitted exactly once
// regardless of input order. Within a combined name the husband is
// listed first when genders are known, otherwise input order is kept.
func PairForBroadcast(entries []AnniversaryEntry) []entity.Recipient {
	byMobile := make(map[string]*AnniversaryEntry, len(entries))
	for i := range entries {
		if mobile := entries[i].Recipient.Mobile; mobile != "" {
			byMobile[mobile] = &entries[i]
		}
	}

	recipients := make([]entity.Recipient, 0, len(entries))
	paired := make(map[string]bool)

	for i := range entries {
		e := &entries[i]
		mobile := e.Recipient.Mobile

		if mobile != "" && paired[pairKey(mobile, e.SpouseMobile)] {
			continue
		}

		spouse := mutualSpouse(e, byMobile)
		if spouse == nil {
			recipients = append(recipients, e.Recipient)
			continue
		}

		paired[pairKey(mobile, e.SpouseMobile)] = true

		first, second := e, spouse
		if first.Gender == entity.GenderFemale && second.Gender == entity.GenderMale {
			first, second = second, first
		}
		combined := first.Recipient
		combined.DisplayName = first.Recipient.DisplayName + " & " + second.Recipient.DisplayName
		recipients = append(recipients, combined)
	}

	return recipients
}

// mutualSpouse returns the entry for e's spouse when both entries list
// each other's mobiles, nil otherwise.
func mutualSpouse(e *AnniversaryEntry, byMobile map[string]*AnniversaryEntry) *AnniversaryEntry {
	if e.Recipient.Mobile == "" || e.SpouseMobile == "" || e.SpouseMobile == e.Recipient.Mobile {
		return nil
	}
	spouse, ok := byMobile[e.SpouseMobile]
	if !ok || spouse.SpouseMobile != e.Recipient.Mobile {
		return nil
	}
	return spouse
}

// pairKey builds an order-independent identity for a spouse pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
