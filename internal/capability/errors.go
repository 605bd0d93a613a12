package capability

import "fmt"

// CapabilityError reports a classifier/extractor call that failed, timed out,
// or returned a malformed response. The pipeline records it on the stage row
// and short-circuits; it is never retried automatically.
type CapabilityError struct {
	Op      string // "classify" or "extract"
	Message string
	Cause   error
}

func (e *CapabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("capability error: %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("capability error: %s: %s", e.Op, e.Message)
}

func (e *CapabilityError) Unwrap() error {
	return e.Cause
}
