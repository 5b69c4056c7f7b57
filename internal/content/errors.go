package content

import "fmt"

// Op names a data access operation in OpError messages.
type Op string

// Data access operations.
const (
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// OpError is the uniform failure returned by every Collection method.
// Its message is user-facing ("failed to fetch services"); the store
// cause is kept for logging and errors.Is/As.
type OpError struct {
	Op   Op
	Noun string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("failed to %s %s", e.Op, e.Noun)
}

func (e *OpError) Unwrap() error { return e.Err }
