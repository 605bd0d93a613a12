package db

import "fmt"

// PersistenceError describes a failed storage operation. Op names the
// store call that failed so pipeline stage rows can record where a
// persist attempt went wrong.
type PersistenceError struct {
	Op      string
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence error: %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("persistence error: %s: %s", e.Op, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
