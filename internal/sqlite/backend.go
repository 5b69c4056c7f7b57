// Package sqlite implements a local content store with the same contract as
// the hosted one. SQLite is the query engine; objects.jsonl in the data
// directory is the source of truth. The database is rebuilt from the JSONL
// file on every Attach and each write rewrites the file atomically.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// File names inside the data directory.
const (
	dbFile      = "contentdesk.db"
	objectsFile = "objects.jsonl"
)

// Lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("store already attached")
	ErrDetached        = errors.New("store is detached")
)

// Store implements types.AttachableStore.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *zap.Logger
	now      func() time.Time
}

var _ types.AttachableStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces time.Now for created_at and modified_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store instance. The store is not attached; call Attach
// with a Config to initialize.
func NewStore(opts ...Option) *Store {
	s := &Store{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach creates DataDir if needed, builds a fresh SQLite schema, and loads
// objects.jsonl into it. Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache of the JSONL file; start from scratch.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	jsonlPath := filepath.Join(dataDir, objectsFile)
	if err := ensureJSONL(jsonlPath); err != nil {
		db.Close()
		return err
	}
	n, err := loadObjects(db, jsonlPath)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	config.DataDir = dataDir
	s.config = config
	s.db = db
	s.attached = true
	s.log.Info("local store attached", zap.String("data_dir", dataDir), zap.Int("objects", n))
	return nil
}

// Detach closes the database. After Detach every operation fails with
// ErrDetached. Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}

// jsonlPath returns the source-of-truth file. The caller must hold s.mu.
func (s *Store) jsonlPath() string {
	return filepath.Join(s.config.DataDir, objectsFile)
}

func (s *Store) detached(op string) error {
	return &types.StoreError{Op: op, Kind: types.ErrorUnavailable, Err: ErrDetached}
}

// newID generates a UUID v7 for object ids.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
