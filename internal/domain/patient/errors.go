package patient

import (
	"fmt"
	"strings"
)

// ValidationError reports every missing or malformed required field of a
// draft. It is reported inline to the caller, never as a fatal failure.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid patient draft: %s", strings.Join(e.Fields, ", "))
}

// PersistenceError wraps a failure of the persistence collaborator on the
// primary write. No retry is attempted here; when it occurs nothing has been
// committed locally.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
