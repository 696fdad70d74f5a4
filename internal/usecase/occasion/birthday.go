package occasion

import (
	"context"
	"fmt"
	"strings"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/pkg/localdate"
)

// ResolveBirthdays computes today's birthday recipients: every primary
// member whose birth date matches today's month-day key, plus household
// spouse/child sub-records with matching birthdays, unless the dependent
// is independently registered (their mobile appears as a primary member's
// mobile or holds a device registration) or, for dependents without a
// mobile, their normalized name and exact birth date match a primary.
// The second return value is the number of member records scanned.
//
// Within one run no two recipients share a dedup identity: a spouse who
// is also a standalone primary member is emitted once, as a primary.
// Result order is the stable scan order of the member store, primaries
// before dependents.
func (r *Resolver) ResolveBirthdays(ctx context.Context, today localdate.LocalDate) ([]entity.Recipient, int, error) {
	members, err := r.Members.ListWithBirthDates(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("ResolveBirthdays: %w", err)
	}

	todayKey := today.MonthDay()

	// Identity of everyone with a standalone account: all primary member
	// mobiles, plus those dependent mobiles that hold their own device
	// registration.
	primaryMobiles := make(map[string]bool, len(members))
	for _, m := range members {
		if mobile := strings.TrimSpace(m.Mobile); mobile != "" {
			primaryMobiles[mobile] = true
		}
	}
	dependentMobiles := collectDependentMobiles(members)
	deviceHolders, err := r.Devices.RegisteredMobiles(ctx, dependentMobiles)
	if err != nil {
		return nil, 0, fmt.Errorf("ResolveBirthdays: %w", err)
	}

	// Primaries whose birthday matches today, indexed by normalized name
	// plus exact birth date for the mobile-less dependent check.
	primaryNameDates := make(map[string]bool)

	recipients := make([]entity.Recipient, 0, 8)
	added := make(map[string]bool)

	for _, m := range members {
		if r.monthDayKey(m.DateOfBirth) != todayKey {
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
		primaryNameDates[entity.NormalizeName(name)+"|"+r.localDateKey(m.DateOfBirth)] = true
		recipients = append(recipients, rec)
	}

	for _, m := range members {
		if m.Spouse != nil {
			recipients = r.appendDependent(recipients, added, *m.Spouse, entity.RelationSpouse,
				m.Mobile, today, todayKey, primaryMobiles, deviceHolders, primaryNameDates)
		}
		for _, child := range m.Children {
			recipients = r.appendDependent(recipients, added, child, entity.RelationChild,
				m.Mobile, today, todayKey, primaryMobiles, deviceHolders, primaryNameDates)
		}
	}

	return recipients, len(members), nil
}

// appendDependent emits a spouse/child recipient unless the dependent is
// independently registered or already present in the run.
func (r *Resolver) appendDependent(
	recipients []entity.Recipient,
	added map[string]bool,
	dep entity.FamilyMember,
	relation entity.Relation,
	sourceMobile string,
	today localdate.LocalDate,
	todayKey string,
	primaryMobiles, deviceHolders, primaryNameDates map[string]bool,
) []entity.Recipient {
	if r.monthDayKey(dep.DateOfBirth) != todayKey {
		return recipients
	}
	name := dep.PreferredName()
	if name == "" {
		return recipients
	}

	mobile := strings.TrimSpace(dep.Mobile)
	if mobile != "" {
		// A dependent holding a standalone account gets their own
		// notification via the primary pass; never emit them twice.
		if primaryMobiles[mobile] || deviceHolders[mobile] {
			return recipients
		}
	} else if primaryNameDates[entity.NormalizeName(name)+"|"+r.localDateKey(dep.DateOfBirth)] {
		return recipients
	}

	rec := entity.Recipient{
		DisplayName:  name,
		Mobile:       mobile,
		OccasionDate: today,
		Relation:     relation,
		SourceMobile: strings.TrimSpace(sourceMobile),
	}
	if added[rec.DedupKey()] {
		return recipients
	}
	added[rec.DedupKey()] = true
	return append(recipients, rec)
}

// collectDependentMobiles gathers the distinct non-empty mobiles of all
// spouse/child sub-records, for one batched device-registration lookup.
func collectDependentMobiles(members []*entity.Member) []string {
	seen := make(map[string]bool)
	mobiles := make([]string, 0, 16)
	for _, m := range members {
		if m.Spouse != nil {
			if mobile := strings.TrimSpace(m.Spouse.Mobile); mobile != "" && !seen[mobile] {
				seen[mobile] = true
				mobiles = append(mobiles, mobile)
			}
		}
		for _, child := range m.Children {
			if mobile := strings.TrimSpace(child.Mobile); mobile != "" && !seen[mobile] {
				seen[mobile] = true
				mobiles = append(mobiles, mobile)
			}
		}
	}
	return mobiles
}
