package models

// Outcome is the result of a single persistence attempt. A duplicate is an
// expected, recoverable result and is never surfaced as an error.
type Outcome int

const (
	// OutcomeSaved means a new row was inserted.
	OutcomeSaved Outcome = iota

	// OutcomeDuplicate means the natural key matched an existing row and the
	// record was discarded.
	OutcomeDuplicate

	// OutcomeErrored means the store rejected the write for a reason other
	// than a uniqueness violation.
	OutcomeErrored
)

// String returns the string representation of an outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}
