package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Operation names reported in StoreError.Op.
const (
	opFind      = "find"
	opFindOne   = "find_one"
	opInsertOne = "insert_one"
	opUpdateOne = "update_one"
	opDeleteOne = "delete_one"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func notFound(op, msg string) error {
	return &types.StoreError{Op: op, Kind: types.ErrorNotFound, Status: 404, Msg: msg}
}

func invalid(op, msg string) error {
	return &types.StoreError{Op: op, Kind: types.ErrorInvalid, Status: 400, Msg: msg}
}

func failed(op string, err error) error {
	var se *types.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &types.StoreError{Op: op, Kind: types.ErrorUnavailable, Status: 500, Msg: "local store failure", Err: err}
}

// Find returns every object of q.Type in insertion order. An empty
// collection reports not found, matching the hosted store.
func (s *Store) Find(ctx context.Context, q types.FindQuery) ([]types.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, s.detached(opFind)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+objectColumns+" FROM objects WHERE type = ? ORDER BY rowid", q.Type)
	if err != nil {
		return nil, failed(opFind, err)
	}
	objs, err := scanObjects(rows)
	if err != nil {
		return nil, failed(opFind, err)
	}
	if len(objs) == 0 {
		return nil, notFound(opFind, "no objects found")
	}

	for i := range objs {
		if err := s.expand(ctx, s.db, &objs[i], q.Depth); err != nil {
			return nil, failed(opFind, err)
		}
		project(&objs[i], q.Props)
	}
	return objs, nil
}

// FindOne returns the object with q.ID. A non-empty q.Type must match.
func (s *Store) FindOne(ctx context.Context, q types.FindOneQuery) (types.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return types.Object{}, s.detached(opFindOne)
	}

	obj, err := getObject(ctx, s.db, q.ID)
	if err != nil {
		return types.Object{}, wrapGet(opFindOne, err)
	}
	if q.Type != "" && obj.Type != q.Type {
		return types.Object{}, notFound(opFindOne, "object not found")
	}
	if err := s.expand(ctx, s.db, &obj, q.Depth); err != nil {
		return types.Object{}, failed(opFindOne, err)
	}
	project(&obj, q.Props)
	return obj, nil
}

// InsertOne creates an object with a new id, a unique slug, and both
// timestamps set to now.
func (s *Store) InsertOne(ctx context.Context, in types.Insert) (types.Object, error) {
	if strings.TrimSpace(in.Type) == "" {
		return types.Object{}, invalid(opInsertOne, "type is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return types.Object{}, invalid(opInsertOne, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.Object{}, s.detached(opInsertOne)
	}

	meta := in.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return types.Object{}, invalid(opInsertOne, "metadata is not serializable")
	}

	var obj types.Object
	err = s.write(ctx, func(tx *sql.Tx) error {
		id := newID()
		slug, err := uniqueSlug(ctx, tx, in.Type, slugify(in.Title, id))
		if err != nil {
			return err
		}
		now := formatTime(s.now())
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO objects ("+objectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, in.Type, in.Title, slug, string(metaJSON), now, now); err != nil {
			return fmt.Errorf("inserting object: %w", err)
		}
		obj, err = getObject(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Object{}, failed(opInsertOne, err)
	}
	s.log.Debug("inserted object", zap.String("type", obj.Type), zap.String("id", obj.ID))
	return obj, nil
}

// UpdateOne applies the non-nil fields of u. Metadata, when present,
// replaces the stored metadata.
func (s *Store) UpdateOne(ctx context.Context, id string, u types.Update) (types.Object, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return types.Object{}, invalid(opUpdateOne, "title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.Object{}, s.detached(opUpdateOne)
	}

	var obj types.Object
	err := s.write(ctx, func(tx *sql.Tx) error {
		cur, err := getObject(ctx, tx, id)
		if err != nil {
			return wrapGet(opUpdateOne, err)
		}
		if u.Title != nil {
			cur.Title = *u.Title
		}
		if u.Metadata != nil {
			cur.Metadata = u.Metadata
		}
		metaJSON, err := json.Marshal(cur.Metadata)
		if err != nil {
			return invalid(opUpdateOne, "metadata is not serializable")
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE objects SET title = ?, metadata = ?, modified_at = ? WHERE object_id = ?",
			cur.Title, string(metaJSON), formatTime(s.now()), id); err != nil {
			return fmt.Errorf("updating object: %w", err)
		}
		obj, err = getObject(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Object{}, failed(opUpdateOne, err)
	}
	s.log.Debug("updated object", zap.String("type", obj.Type), zap.String("id", id))
	return obj, nil
}

// DeleteOne removes the object. References to it held by other objects are
// left in place and dropped on expansion.
func (s *Store) DeleteOne(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return s.detached(opDeleteOne)
	}

	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM objects WHERE object_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting object: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(opDeleteOne, "object not found")
		}
		return nil
	})
	if err != nil {
		return failed(opDeleteOne, err)
	}
	s.log.Debug("deleted object", zap.String("id", id))
	return nil
}

// write runs fn in a transaction and rewrites objects.jsonl from the
// transaction's view before committing, so the file and the database never
// disagree after a successful write. The caller must hold s.mu.
func (s *Store) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := s.persist(ctx, tx); err != nil {
		return fmt.Errorf("persisting %s: %w", objectsFile, err)
	}
	return tx.Commit()
}

// persist rewrites objects.jsonl with every row visible to q.
func (s *Store) persist(ctx context.Context, q querier) error {
	rows, err := q.QueryContext(ctx, "SELECT "+objectColumns+" FROM objects ORDER BY rowid")
	if err != nil {
		return err
	}
	defer rows.Close()

	var records []objectJSON
	for rows.Next() {
		var r objectRow
		if err := rows.Scan(&r.ID, &r.Type, &r.Title, &r.Slug, &r.Metadata, &r.CreatedAt, &r.ModifiedAt); err != nil {
			return err
		}
		rec, err := r.record()
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeObjects(s.jsonlPath(), records)
}

func getObject(ctx context.Context, q querier, id string) (types.Object, error) {
	var r objectRow
	err := q.QueryRowContext(ctx, "SELECT "+objectColumns+" FROM objects WHERE object_id = ?", id).
		Scan(&r.ID, &r.Type, &r.Title, &r.Slug, &r.Metadata, &r.CreatedAt, &r.ModifiedAt)
	if err != nil {
		return types.Object{}, err
	}
	return r.object()
}

func wrapGet(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(op, "object not found")
	}
	return failed(op, err)
}

func scanObjects(rows *sql.Rows) ([]types.Object, error) {
	defer rows.Close()
	var out []types.Object
	for rows.Next() {
		var r objectRow
		if err := rows.Scan(&r.ID, &r.Type, &r.Title, &r.Slug, &r.Metadata, &r.CreatedAt, &r.ModifiedAt); err != nil {
			return nil, err
		}
		obj, err := r.object()
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

// project clears the fields not named in props. An empty props keeps all.
func project(o *types.Object, props []string) {
	if len(props) == 0 {
		return
	}
	keep := make(map[string]bool, len(props))
	for _, p := range props {
		keep[p] = true
	}
	if !keep["title"] {
		o.Title = ""
	}
	if !keep["slug"] {
		o.Slug = ""
	}
	if !keep["metadata"] {
		o.Metadata = nil
	}
	if !keep["created_at"] {
		o.CreatedAt = time.Time{}
	}
	if !keep["modified_at"] {
		o.ModifiedAt = time.Time{}
	}
}
