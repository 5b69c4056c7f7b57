package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// objectJSON is one line of objects.jsonl.
type objectJSON struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Slug       string         `json:"slug"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  string         `json:"created_at"`
	ModifiedAt string         `json:"modified_at"`
}

// objectRow is the SQLite representation of an object.
type objectRow struct {
	ID         string
	Type       string
	Title      string
	Slug       string
	Metadata   string
	CreatedAt  string
	ModifiedAt string
}

func (r objectRow) object() (types.Object, error) {
	o := types.Object{ID: r.ID, Type: r.Type, Title: r.Title, Slug: r.Slug}
	if err := json.Unmarshal([]byte(r.Metadata), &o.Metadata); err != nil {
		return o, fmt.Errorf("decoding metadata of %s: %w", r.ID, err)
	}
	if o.Metadata == nil {
		o.Metadata = map[string]any{}
	}
	var err error
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, r.CreatedAt); err != nil {
		return o, fmt.Errorf("parsing created_at of %s: %w", r.ID, err)
	}
	if o.ModifiedAt, err = time.Parse(time.RFC3339Nano, r.ModifiedAt); err != nil {
		return o, fmt.Errorf("parsing modified_at of %s: %w", r.ID, err)
	}
	return o, nil
}

func (r objectRow) record() (objectJSON, error) {
	rec := objectJSON{
		ID:         r.ID,
		Type:       r.Type,
		Title:      r.Title,
		Slug:       r.Slug,
		CreatedAt:  r.CreatedAt,
		ModifiedAt: r.ModifiedAt,
	}
	if err := json.Unmarshal([]byte(r.Metadata), &rec.Metadata); err != nil {
		return rec, fmt.Errorf("decoding metadata of %s: %w", r.ID, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
