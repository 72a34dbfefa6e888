package pricing

import "fmt"

// ValidationError means an input was malformed (bad thresholds, out-of-range
// percentages, negative points or prices). No quote is produced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DataUnavailableError means a required collaborator input could not be
// fetched. Loyalty data degrades to a zero-benefit fallback; threshold config
// unavailability is fatal to the quote.
type DataUnavailableError struct {
	Source string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// CapacityError means the caller asked for more than is on hand, such as
// redeeming points beyond the balance or applying a reward past its expiry.
// Callers clamp or filter ahead of time; reaching this error means the attempt
// should be logged rather than treated as a normal zero.
type CapacityError struct {
	What   string
	Reason string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %s", e.What, e.Reason)
}
