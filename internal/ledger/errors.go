package ledger

import "fmt"

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError aborts the enclosing unit of work when a referenced
// record does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ConsistencyError wraps a storage failure that interrupted a unit of
// work. The unit has been rolled back; prior state is intact.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: unit of work rolled back: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
