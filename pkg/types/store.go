package types

import (
	"context"
	"errors"
	"fmt"
)

// ContentStore is the remote object API every backend implements.
// Callers branch on failures with errors.Is against the ErrorKind values
// or errors.As into *StoreError.
type ContentStore interface {
	// Find returns every object of q.Type. A store with no objects of that
	// type reports ErrorNotFound, as the hosted store does.
	Find(ctx context.Context, q FindQuery) ([]Object, error)

	// FindOne returns the object with q.ID. Reports ErrorNotFound if absent.
	FindOne(ctx context.Context, q FindOneQuery) (Object, error)

	// InsertOne creates an object; the store assigns id, slug and timestamps.
	InsertOne(ctx context.Context, in Insert) (Object, error)

	// UpdateOne applies only the non-nil fields of u.
	UpdateOne(ctx context.Context, id string, u Update) (Object, error)

	// DeleteOne hard-deletes the object.
	DeleteOne(ctx context.Context, id string) error
}

// AttachableStore is a ContentStore with an explicit lifecycle, used by
// local backends that hold files and database handles.
type AttachableStore interface {
	ContentStore

	// Attach opens the store's resources under cfg.DataDir.
	Attach(cfg Config) error

	// Detach releases resources. It is idempotent.
	Detach() error
}

// FindQuery selects a collection with a field projection and
// relationship-expansion depth.
type FindQuery struct {
	Type  string
	Props []string
	Depth int
}

// FindOneQuery selects one object by id.
type FindOneQuery struct {
	ID    string
	Type  string
	Props []string
	Depth int
}

// Insert is the create payload.
type Insert struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Update is the partial update payload. Absent fields are never
// null-filled.
type Update struct {
	Title    *string        `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ErrorKind is the closed set of store failure classes.
type ErrorKind int

// Store failure classes.
const (
	ErrorUnknown ErrorKind = iota
	ErrorNotFound
	ErrorUnauthorized
	ErrorInvalid
	ErrorUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNotFound:
		return "not found"
	case ErrorUnauthorized:
		return "unauthorized"
	case ErrorInvalid:
		return "invalid request"
	case ErrorUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error lets an ErrorKind act as a sentinel: errors.Is(err, ErrorNotFound).
func (k ErrorKind) Error() string { return "content store: " + k.String() }

// StoreError is returned by every ContentStore implementation.
type StoreError struct {
	Op     string // find, find_one, insert_one, update_one, delete_one
	Kind   ErrorKind
	Status int // HTTP-equivalent status; zero for transport failures
	Msg    string
	Err    error
}

func (e *StoreError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is matches an ErrorKind sentinel against the error's kind.
func (e *StoreError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindFromStatus maps an HTTP status to an ErrorKind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == 404:
		return ErrorNotFound
	case status == 401 || status == 403:
		return ErrorUnauthorized
	case status == 400 || status == 409 || status == 422:
		return ErrorInvalid
	case status >= 500:
		return ErrorUnavailable
	default:
		return ErrorUnknown
	}
}

// IsNotFound reports whether err is a store not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrorNotFound)
}
