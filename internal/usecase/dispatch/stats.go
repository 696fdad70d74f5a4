package dispatch

import "time"

// RunStats accumulates the counters of one orchestrated run. It is
// serialized into the run summary record, so the JSON field names are
// part of the stored format.
type RunStats struct {
	RunID string `json:"runId"`
	Kind  string `json:"kind"`
	Slot  string `json:"slot"`
	Date  string `json:"date"`

	// StoreOK is false when the ledger was unreachable and the run
	// aborted before any send.
	StoreOK bool `json:"storeOk"`

	// TotalCandidates is the number of records scanned by the resolver;
	// TodaysCount is how many matched the run date.
	TotalCandidates int `json:"totalCandidates"`
	TodaysCount     int `json:"todaysCount"`

	BroadcastSent    int `json:"broadcastSent"`
	BroadcastFailed  int `json:"broadcastFailed"`
	BroadcastSkipped int `json:"broadcastSkipped"`

	PersonalSent   int `json:"personalSent"`
	PersonalFailed int `json:"personalFailed"`

	SkippedAlreadySent int `json:"skippedAlreadySent"`
	SkippedNoMobile    int `json:"skippedNoMobile"`
	SkippedNoToken     int `json:"skippedNoToken"`

	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`

	Details []Detail `json:"-"`
}

// Lane distinguishes the two send paths of a run.
type Lane string

const (
	LaneBroadcast Lane = "broadcast"
	LanePersonal  Lane = "personal"
)

// Record tallies one outcome into the lane counters and appends its
// detail line. Skip reasons in the personal lane are counted per reason;
// the broadcast lane only ever skips on an existing ledger record.
func (s *RunStats) Record(lane Lane, d Detail) {
	s.Details = append(s.Details, d)
	recordOutcome(s.Kind, lane, d.Outcome)

	if lane == LaneBroadcast {
		switch d.Outcome {
		case OutcomeSent:
			s.BroadcastSent++
		case OutcomeFailed:
			s.BroadcastFailed++
		default:
			s.BroadcastSkipped++
		}
		return
	}

	switch d.Outcome {
	case OutcomeSent:
		s.PersonalSent++
	case OutcomeFailed:
		s.PersonalFailed++
	case OutcomeSkippedAlreadySent:
		s.SkippedAlreadySent++
	case OutcomeSkippedNoMobile:
		s.SkippedNoMobile++
	case OutcomeSkippedNoToken:
		s.SkippedNoToken++
	}
}
