package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// expand rewrites a stored object into its read shape at the given depth.
// Stored references are bare ids; at depth >= 1 each is replaced by the
// referenced object (itself expanded at depth-1), and ids that no longer
// resolve are dropped. Option keys become {key, value} and media names
// become {name}. Objects of unknown type are returned as stored.
func (s *Store) expand(ctx context.Context, q querier, o *types.Object, depth int) error {
	kind := types.Kind(o.Type)
	if !kind.Valid() || depth < 1 || o.Metadata == nil {
		return nil
	}
	for _, f := range types.SchemaFor(kind).Fields {
		v, ok := o.Metadata[f.Name]
		if !ok || v == nil {
			continue
		}
		switch f.Type {
		case types.FieldRef:
			ref, err := s.resolve(ctx, q, v, depth)
			if err != nil {
				return err
			}
			if ref == nil {
				delete(o.Metadata, f.Name)
				continue
			}
			o.Metadata[f.Name] = ref
		case types.FieldRefList:
			items, _ := v.([]any)
			refs := make([]any, 0, len(items))
			for _, item := range items {
				ref, err := s.resolve(ctx, q, item, depth)
				if err != nil {
					return err
				}
				if ref != nil {
					refs = append(refs, ref)
				}
			}
			o.Metadata[f.Name] = refs
		case types.FieldOption:
			if key, ok := v.(string); ok {
				o.Metadata[f.Name] = map[string]any{"key": key, "value": key}
			}
		case types.FieldImage:
			if name, ok := v.(string); ok {
				o.Metadata[f.Name] = map[string]any{"name": name}
			}
		}
	}
	return nil
}

// resolve loads the object an id refers to, or returns nil when it is gone.
func (s *Store) resolve(ctx context.Context, q querier, v any, depth int) (map[string]any, error) {
	id, ok := v.(string)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			return m, nil
		}
		return nil, nil
	}
	ref, err := getObject(ctx, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.expand(ctx, q, &ref, depth-1); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":       ref.ID,
		"type":     ref.Type,
		"title":    ref.Title,
		"slug":     ref.Slug,
		"metadata": ref.Metadata,
	}, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases title and joins its alphanumeric runs with hyphens.
// A title with no usable characters falls back to the id.
func slugify(title, id string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return id
	}
	return slug
}

// uniqueSlug appends -2, -3, ... until slug is unused within typ.
func uniqueSlug(ctx context.Context, q querier, typ, slug string) (string, error) {
	candidate := slug
	for n := 2; ; n++ {
		var exists int
		err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM objects WHERE type = ? AND slug = ?", typ, candidate).Scan(&exists)
		if err != nil {
			return "", err
		}
		if exists == 0 {
			return candidate, nil
		}
		candidate = slug + "-" + strconv.Itoa(n)
	}
}
