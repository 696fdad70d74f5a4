package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"temple-notify/internal/domain/entity"
	"temple-notify/internal/repository"
)

// MemberRepo provides read access to member records. Spouse and children
// sub-records are stored as JSONB documents, mirroring the household
// structure of the registration data.
type MemberRepo struct {
	db DBTX
}

func NewMemberRepo(db DBTX) repository.MemberRepository {
	return &MemberRepo{db: db}
}

func (repo *MemberRepo) ListWithBirthDates(ctx context.Context) ([]*entity.Member, error) {
	const query = `
SELECT id, name, initiation_name, gender, mobile, date_of_birth, spouse, children
FROM members
WHERE date_of_birth IS NOT NULL OR spouse IS NOT NULL OR children <> '[]'::jsonb
ORDER BY id`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListWithBirthDates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members := make([]*entity.Member, 0, 100)
	for rows.Next() {
		var member entity.Member
		var initiationName, gender, mobile sql.NullString
		var spouseDoc, childrenDoc []byte
		if err := rows.Scan(&member.ID, &member.Name, &initiationName, &gender,
			&mobile, &member.DateOfBirth, &spouseDoc, &childrenDoc); err != nil {
			return nil, fmt.Errorf("ListWithBirthDates: Scan: %w", err)
		}
		member.InitiationName = initiationName.String
		member.Gender = gender.String
		member.Mobile = mobile.String
		if err := decodeFamily(&member, spouseDoc, childrenDoc); err != nil {
			// A malformed household document excludes the sub-records,
			// not the member.
			slog.Warn("skipping malformed family document",
				slog.Int64("member_id", member.ID),
				slog.Any("error", err))
		}
		members = append(members, &member)
	}
	return members, rows.Err()
}

func (repo *MemberRepo) ListWithMarriageDates(ctx context.Context) ([]*entity.Member, error) {
	const query = `
SELECT id, name, initiation_name, gender, mobile, date_of_marriage, spouse_mobile
FROM members
WHERE date_of_marriage IS NOT NULL
ORDER BY id`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListWithMarriageDates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members := make([]*entity.Member, 0, 100)
	for rows.Next() {
		var member entity.Member
		var initiationName, gender, mobile, spouseMobile sql.NullString
		if err := rows.Scan(&member.ID, &member.Name, &initiationName, &gender,
			&mobile, &member.DateOfMarriage, &spouseMobile); err != nil {
			return nil, fmt.Errorf("ListWithMarriageDates: Scan: %w", err)
		}
		member.InitiationName = initiationName.String
		member.Gender = gender.String
		member.Mobile = mobile.String
		member.SpouseMobile = spouseMobile.String
		members = append(members, &member)
	}
	return members, rows.Err()
}

// decodeFamily unmarshals the spouse and children JSONB documents into the
// member. Nil or SQL-null documents are valid and leave the fields empty.
func decodeFamily(member *entity.Member, spouseDoc, childrenDoc []byte) error {
	if len(spouseDoc) > 0 && string(spouseDoc) != "null" {
		var spouse entity.FamilyMember
		if err := json.Unmarshal(spouseDoc, &spouse); err != nil {
			return fmt.Errorf("decode spouse: %w", err)
		}
		member.Spouse = &spouse
		member.SpouseMobile = spouse.Mobile
	}
	if len(childrenDoc) > 0 && string(childrenDoc) != "null" {
		if err := json.Unmarshal(childrenDoc, &member.Children); err != nil {
			return fmt.Errorf("decode children: %w", err)
		}
	}
	return nil
}
