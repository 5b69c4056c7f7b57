// Package overview builds the dashboard summary: a count per content kind
// and a short feed of the most recently modified objects across all kinds.
package overview

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// RecentLimit caps the recent-activity feed.
const RecentLimit = 5

// ErrLoad is returned when any collection fails to load.
var ErrLoad = errors.New("failed to load dashboard data")

// Source lists one kind's objects without decoding metadata.
type Source interface {
	Kind() types.Kind
	ListHeaders(ctx context.Context) ([]types.Header, error)
}

// Activity is one entry in the recent-activity feed.
type Activity struct {
	types.Header
	Kind  types.Kind `json:"kind"`
	Label string     `json:"label"`
}

// Overview is the rendered dashboard summary.
type Overview struct {
	Counts map[types.Kind]int `json:"counts"`
	Recent []Activity         `json:"recent"`
}

// LoadError wraps the first collection failure behind ErrLoad.
type LoadError struct {
	Kind types.Kind
	Err  error
}

func (e *LoadError) Error() string { return ErrLoad.Error() }

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// Sources returns the catalog's collections in display order.
func Sources(c *content.Catalog) []Source {
	return []Source{c.Services, c.TeamMembers, c.Testimonials, c.CaseStudies}
}

// Load fetches every source concurrently. The overview is produced only
// when all of them succeed.
func Load(ctx context.Context, log *zap.Logger, sources ...Source) (Overview, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([][]types.Header, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			headers, err := src.ListHeaders(gctx)
			if err != nil {
				return &LoadError{Kind: src.Kind(), Err: err}
			}
			results[i] = headers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("load overview", zap.Error(err))
		return Overview{}, err
	}

	ov := Overview{Counts: make(map[types.Kind]int, len(sources))}
	var feed []Activity
	for i, src := range sources {
		kind := src.Kind()
		ov.Counts[kind] = len(results[i])
		for _, h := range results[i] {
			feed = append(feed, Activity{Header: h, Kind: kind, Label: kind.Label()})
		}
	}
	ov.Recent = Recent(feed, RecentLimit)
	return ov, nil
}

// Recent sorts the feed by modified time, newest first, keeping the input
// order on ties, and truncates it to limit entries.
func Recent(feed []Activity, limit int) []Activity {
	out := slices.Clone(feed)
	slices.SortStableFunc(out, func(a, b Activity) int {
		return b.ModifiedAt.Compare(a.ModifiedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Activity{}
	}
	return out
}
