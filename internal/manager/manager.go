// Package manager holds the list-view lifecycle of one content kind: the
// fetched list, its loading/ready/error state, and the optimistic patches
// applied after a mutation succeeds. A Manager owns its list exclusively;
// nothing re-fetches it in the background.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// State is the lifecycle state of a Manager.
type State string

// Manager states.
const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Mode tells Saved how to patch the list.
type Mode string

// Save modes.
const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Manager errors.
var (
	ErrNotReady       = errors.New("list is not loaded")
	ErrEntityNotFound = errors.New("entity not in list")
	ErrDeclined       = errors.New("deletion not confirmed")
)

// Source is the slice of the data access layer a Manager needs.
type Source[M any] interface {
	Kind() types.Kind
	List(ctx context.Context) ([]types.Entity[M], error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Notice is a transient, user-facing mutation failure. The held list is
// left untouched when a Notice is returned.
type Notice struct {
	Message string
	Err     error
}

func (n *Notice) Error() string { return n.Message }

func (n *Notice) Unwrap() error { return n.Err }

// View is a point-in-time copy of a Manager.
type View[M any] struct {
	Kind    types.Kind        `json:"kind"`
	State   State             `json:"state"`
	Items   []types.Entity[M] `json:"items"`
	Message string            `json:"error,omitempty"`
}

// Option configures a Manager.
type Option[M any] func(*Manager[M])

// WithSubject overrides how the delete prompt names an entity.
func WithSubject[M any](fn func(types.Entity[M]) string) Option[M] {
	return func(m *Manager[M]) { m.subject = fn }
}

// Manager holds one kind's list. It is safe for concurrent use; when two
// mutations race, the last patch applied wins.
type Manager[M any] struct {
	src     Source[M]
	subject func(types.Entity[M]) string

	mu      sync.Mutex
	state   State
	items   []types.Entity[M]
	message string
}

// New returns a Manager in the loading state. Call Load to fetch.
func New[M any](src Source[M], opts ...Option[M]) *Manager[M] {
	m := &Manager[M]{
		src:   src,
		state: StateLoading,
		subject: func(e types.Entity[M]) string {
			return fmt.Sprintf("%q", e.Title)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Kind returns the managed content kind.
func (m *Manager[M]) Kind() types.Kind { return m.src.Kind() }

// Load enters the loading state and fetches the list. On success the
// manager is ready with the fetched items; on failure it holds the error
// message and Load may be called again to retry.
func (m *Manager[M]) Load(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateLoading
	m.message = ""
	m.mu.Unlock()

	items, err := m.src.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateError
		m.items = nil
		m.message = fmt.Sprintf("Failed to load %s", m.src.Kind().Plural())
		return err
	}
	m.state = StateReady
	m.items = items
	return nil
}

// Retry re-enters loading; it is Load under the name the error view uses.
func (m *Manager[M]) Retry(ctx context.Context) error { return m.Load(ctx) }

// State returns the current lifecycle state.
func (m *Manager[M]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the manager's state and items.
func (m *Manager[M]) Snapshot() View[M] {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]types.Entity[M], len(m.items))
	copy(items, m.items)
	return View[M]{Kind: m.src.Kind(), State: m.state, Items: items, Message: m.message}
}

// Find returns the held entity with id.
func (m *Manager[M]) Find(id string) (types.Entity[M], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return types.Entity[M]{}, false
	}
	return m.items[i], true
}

// Saved applies the optimistic patch for a successful create or update:
// a created entity is prepended, an edited one replaces its id in place.
func (m *Manager[M]) Saved(mode Mode, e types.Entity[M]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return ErrNotReady
	}
	switch mode {
	case ModeCreate:
		m.items = append([]types.Entity[M]{e}, m.items...)
	case ModeEdit:
		i := m.indexLocked(e.ID)
		if i < 0 {
			return ErrEntityNotFound
		}
		m.items[i] = e
	default:
		return fmt.Errorf("unknown save mode %q", mode)
	}
	return nil
}

// Delete asks confirm to approve deleting the held entity with id, then
// deletes it from the store and removes it from the list. A declined
// prompt returns ErrDeclined and changes nothing; a store failure returns
// a *Notice and leaves the list unchanged.
func (m *Manager[M]) Delete(ctx context.Context, id string, confirm Confirmer) error {
	e, ok := m.Find(id)
	if !ok {
		if m.State() != StateReady {
			return ErrNotReady
		}
		return ErrEntityNotFound
	}

	prompt := fmt.Sprintf("Are you sure you want to delete %s?", m.subject(e))
	if confirm == nil || !confirm.Confirm(prompt) {
		return ErrDeclined
	}

	if err := m.src.Delete(ctx, id); err != nil {
		return &Notice{Message: fmt.Sprintf("Failed to delete %s", m.src.Kind().Singular()), Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(id); i >= 0 {
		m.items = append(m.items[:i:i], m.items[i+1:]...)
	}
	return nil
}

func (m *Manager[M]) indexLocked(id string) int {
	for i, e := range m.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
