package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// loadObjects reads objects.jsonl into the objects table inside one
// transaction. Malformed lines, records missing an id or type, and records
// that violate a constraint are skipped. Unknown fields are ignored.
func loadObjects(db *sql.DB, path string) (int, error) {
	objs, err := readObjects(path)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO objects (" + objectColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for _, o := range objs {
		row, ok := rowFromRecord(o)
		if !ok {
			continue
		}
		if _, err := stmt.Exec(row.ID, row.Type, row.Title, row.Slug, row.Metadata, row.CreatedAt, row.ModifiedAt); err != nil {
			continue
		}
		loaded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

func rowFromRecord(o objectJSON) (objectRow, bool) {
	if o.ID == "" || o.Type == "" {
		return objectRow{}, false
	}
	if o.Metadata == nil {
		o.Metadata = map[string]any{}
	}
	meta, err := json.Marshal(o.Metadata)
	if err != nil {
		return objectRow{}, false
	}
	created := normalizeTime(o.CreatedAt)
	modified := normalizeTime(o.ModifiedAt)
	if modified == "" {
		modified = created
	}
	if created == "" {
		return objectRow{}, false
	}
	if o.Slug == "" {
		o.Slug = slugify(o.Title, o.ID)
	}
	return objectRow{
		ID:         o.ID,
		Type:       o.Type,
		Title:      o.Title,
		Slug:       o.Slug,
		Metadata:   string(meta),
		CreatedAt:  created,
		ModifiedAt: modified,
	}, true
}

// normalizeTime rewrites an RFC 3339 timestamp in UTC; unparseable values
// become empty.
func normalizeTime(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return ""
	}
	return formatTime(t)
}
