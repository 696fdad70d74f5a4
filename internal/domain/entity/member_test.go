package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"temple-notify/internal/pkg/localdate"
)

func TestMember_PreferredName(t *testing.T) {
	tests := []struct {
		name   string
		member Member
		want   string
	}{
		{"initiation name wins", Member{Name: "Ravi Kumar", InitiationName: "Raghava Das"}, "Raghava Das"},
		{"falls back to civil name", Member{Name: "Ravi Kumar"}, "Ravi Kumar"},
		{"whitespace only initiation name", Member{Name: "Ravi Kumar", InitiationName: "   "}, "Ravi Kumar"},
		{"both empty", Member{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.member.PreferredName())
		})
	}
}

func TestMember_HonorificSuffix(t *testing.T) {
	assert.Equal(t, "Prabhu", (&Member{Gender: GenderMale}).HonorificSuffix())
	assert.Equal(t, "Mataji", (&Member{Gender: GenderFemale}).HonorificSuffix())
	// Unknown gender defaults to Prabhu, matching historical behavior.
	assert.Equal(t, "Prabhu", (&Member{}).HonorificSuffix())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "raghava das", NormalizeName("  Raghava   DAS "))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestRecipient_DedupKey(t *testing.T) {
	d := localdate.LocalDate{Year: 2025, Month: time.June, Day: 5}

	withMobile := Recipient{DisplayName: "Raghava Das", Mobile: "9876543210", OccasionDate: d}
	assert.Equal(t, "m:9876543210", withMobile.DedupKey())

	withoutMobile := Recipient{DisplayName: " Raghava  Das ", OccasionDate: d}
	assert.Equal(t, "n:raghava das", withoutMobile.DedupKey())
}
