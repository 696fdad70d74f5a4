package dispatch

// Outcome classifies what happened to one send attempt within a run.
type Outcome string

const (
	OutcomeSent               Outcome = "sent"
	OutcomeFailed             Outcome = "failed"
	OutcomeSkippedAlreadySent Outcome = "skipped_already_sent"
	OutcomeSkippedNoMobile    Outcome = "skipped_no_mobile"
	OutcomeSkippedNoToken     Outcome = "skipped_no_token"
)

// Detail is the per-recipient outcome line included in a run summary.
// Name is the recipient display name for personal sends and the event
// name for festival broadcasts.
type Detail struct {
	Name    string  `json:"name"`
	Mobile  string  `json:"mobile,omitempty"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error,omitempty"`
}
