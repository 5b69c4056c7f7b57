package cli

import (
	"fmt"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/internal/cosmic"
	"github.com/mesh-intelligence/contentdesk/pkg/sqlite"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// attachStore opens the configured backend. The caller must call the
// returned release function.
func (s *session) attachStore() (types.ContentStore, func() error, error) {
	noop := func() error { return nil }
	if s.store != nil {
		return s.store, noop, nil
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, nil, userError(fmt.Errorf("config: %w", err))
	}

	switch s.cfg.Backend {
	case types.BackendCosmic:
		c := s.cfg.Cosmic
		client, err := cosmic.New(cosmic.Config{
			BucketSlug: c.BucketSlug,
			ReadKey:    c.ReadKey,
			WriteKey:   c.WriteKey,
			APIURL:     c.APIURL,
			WriteURL:   c.WriteURL,
			Timeout:    c.Timeout,
		}, cosmic.WithLogger(s.log))
		if err != nil {
			return nil, nil, userError(fmt.Errorf("cosmic: %w", err))
		}
		return client, noop, nil
	default:
		store := sqlite.NewStore(s.log)
		if err := store.Attach(s.cfg.Store()); err != nil {
			return nil, nil, sysError(fmt.Errorf("attach store: %w", err))
		}
		return store, store.Detach, nil
	}
}

// catalog attaches the store and builds the four collections over it.
func (s *session) catalog() (*content.Catalog, func() error, error) {
	store, release, err := s.attachStore()
	if err != nil {
		return nil, nil, err
	}
	return content.NewCatalog(store, s.log), release, nil
}
