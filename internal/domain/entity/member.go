package entity

import (
	"strings"
	"time"
)

// Gender values as stored on member records. Records imported from older
// registration forms may carry an empty string.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Member represents a directly registered community member.
// Spouse and children are embedded sub-records: they describe household
// members who may or may not hold an account of their own.
type Member struct {
	ID             int64
	Name           string
	InitiationName string
	Gender         string
	Mobile         string
	DateOfBirth    *time.Time
	DateOfMarriage *time.Time
	SpouseMobile   string
	Spouse         *FamilyMember
	Children       []FamilyMember
}

// FamilyMember is a spouse or child sub-record embedded in a Member.
// The JSON tags match the document shape stored in the members table.
type FamilyMember struct {
	Name           string     `json:"name"`
	InitiationName string     `json:"initiationName,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Mobile         string     `json:"mobile,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
}

// PreferredName returns the initiation name when present, otherwise the
// civil name. Both are trimmed; an empty result means the record carries
// no usable name at all.
func (m *Member) PreferredName() string {
	return preferredName(m.InitiationName, m.Name)
}

// PreferredName returns the sub-record's initiation name or civil name.
func (f *FamilyMember) PreferredName() string {
	return preferredName(f.InitiationName, f.Name)
}

func preferredName(initiation, civil string) string {
	if n := strings.TrimSpace(initiation); n != "" {
		return n
	}
	return strings.TrimSpace(civil)
}

// HonorificSuffix returns the community honorific for a primary member's
// display name. Dependents are displayed without an honorific.
func (m *Member) HonorificSuffix() string {
	if m.Gender == GenderFemale {
		return "Mataji"
	}
	return "Prabhu"
}

// NormalizeName lowercases and collapses inner whitespace so that the same
// person spelled with different casing or spacing compares equal. Used when
// matching dependents against primaries in the absence of a mobile number.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DeviceRegistration maps a member's mobile number to the push token of
// their current device. The token is cleared (set empty) when the push
// gateway reports it permanently invalid.
type DeviceRegistration struct {
	ID         int64
	Mobile     string
	FCMToken   string
	DeviceType string
	AppVersion string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
