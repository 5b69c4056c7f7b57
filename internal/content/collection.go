package content

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Collection maps one content kind onto the store's typed collection.
type Collection[M any] struct {
	store  types.ContentStore
	kind   types.Kind
	schema types.Schema
	log    *zap.Logger
}

// NewCollection returns the data access module for kind. A nil logger is
// replaced with a no-op logger.
func NewCollection[M any](store types.ContentStore, kind types.Kind, log *zap.Logger) *Collection[M] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collection[M]{
		store:  store,
		kind:   kind,
		schema: types.SchemaFor(kind),
		log:    log.With(zap.String("kind", string(kind))),
	}
}

// Kind returns the collection's content kind.
func (c *Collection[M]) Kind() types.Kind { return c.kind }

// Schema returns the field schema of the collection's kind.
func (c *Collection[M]) Schema() types.Schema { return c.schema }

// List returns every entity, freshest created_at first. A collection the
// store reports as not found yields an empty slice and no error.
func (c *Collection[M]) List(ctx context.Context) ([]types.Entity[M], error) {
	objs, err := c.find(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entity[M], 0, len(objs))
	for _, obj := range objs {
		e, err := c.decode(obj)
		if err != nil {
			c.log.Error("decode object", zap.String("id", obj.ID), zap.Error(err))
			return nil, &OpError{Op: OpFetch, Noun: c.kind.Plural(), Err: err}
		}
		out = append(out, e)
	}
	sortNewestFirst(out, func(e types.Entity[M]) types.Header { return e.Header })
	return out, nil
}

// ListHeaders is List without metadata decoding, used by the overview.
func (c *Collection[M]) ListHeaders(ctx context.Context) ([]types.Header, error) {
	objs, err := c.find(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Header, len(objs))
	for i, obj := range objs {
		out[i] = obj.Header()
	}
	sortNewestFirst(out, func(h types.Header) types.Header { return h })
	return out, nil
}

func (c *Collection[M]) find(ctx context.Context) ([]types.Object, error) {
	objs, err := c.store.Find(ctx, types.FindQuery{
		Type:  string(c.kind),
		Props: types.Projection,
		Depth: c.kind.Depth(),
	})
	if err != nil {
		if types.IsNotFound(err) {
			return nil, nil
		}
		c.log.Error("fetch collection", zap.Error(err))
		return nil, &OpError{Op: OpFetch, Noun: c.kind.Plural(), Err: err}
	}
	return objs, nil
}

// Get returns the entity with id, or nil when the store reports it absent.
func (c *Collection[M]) Get(ctx context.Context, id string) (*types.Entity[M], error) {
	obj, err := c.store.FindOne(ctx, types.FindOneQuery{
		ID:    id,
		Type:  string(c.kind),
		Props: types.Projection,
		Depth: c.kind.Depth(),
	})
	if err != nil {
		if types.IsNotFound(err) {
			return nil, nil
		}
		c.log.Error("fetch object", zap.String("id", id), zap.Error(err))
		return nil, &OpError{Op: OpFetch, Noun: c.kind.Singular(), Err: err}
	}
	e, err := c.decode(obj)
	if err != nil {
		return nil, &OpError{Op: OpFetch, Noun: c.kind.Singular(), Err: err}
	}
	return &e, nil
}

// Create inserts a new entity and returns the store's canonical copy.
func (c *Collection[M]) Create(ctx context.Context, data types.FormData[M]) (types.Entity[M], error) {
	fail := func(err error) (types.Entity[M], error) {
		c.log.Error("create object", zap.Error(err))
		return types.Entity[M]{}, &OpError{Op: OpCreate, Noun: c.kind.Singular(), Err: err}
	}

	meta, err := c.encode(data.Metadata)
	if err != nil {
		return fail(err)
	}
	obj, err := c.store.InsertOne(ctx, types.Insert{
		Type:     string(c.kind),
		Title:    data.Title,
		Metadata: meta,
	})
	if err != nil {
		return fail(err)
	}
	e, err := c.decode(obj)
	if err != nil {
		return fail(err)
	}
	c.log.Info("created object", zap.String("id", e.ID))
	return e, nil
}

// Update sends only the fields present in patch: the title when non-empty
// and the metadata when non-nil. Metadata replaces the stored bag wholesale.
func (c *Collection[M]) Update(ctx context.Context, id string, patch types.Patch[M]) (types.Entity[M], error) {
	fail := func(err error) (types.Entity[M], error) {
		c.log.Error("update object", zap.String("id", id), zap.Error(err))
		return types.Entity[M]{}, &OpError{Op: OpUpdate, Noun: c.kind.Singular(), Err: err}
	}

	var u types.Update
	if patch.Title != nil && *patch.Title != "" {
		title := *patch.Title
		u.Title = &title
	}
	if patch.Metadata != nil {
		meta, err := c.encode(*patch.Metadata)
		if err != nil {
			return fail(err)
		}
		u.Metadata = meta
	}
	obj, err := c.store.UpdateOne(ctx, id, u)
	if err != nil {
		return fail(err)
	}
	e, err := c.decode(obj)
	if err != nil {
		return fail(err)
	}
	c.log.Info("updated object", zap.String("id", id))
	return e, nil
}

// Delete hard-deletes the entity.
func (c *Collection[M]) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteOne(ctx, id); err != nil {
		c.log.Error("delete object", zap.String("id", id), zap.Error(err))
		return &OpError{Op: OpDelete, Noun: c.kind.Singular(), Err: err}
	}
	c.log.Info("deleted object", zap.String("id", id))
	return nil
}

func (c *Collection[M]) decode(obj types.Object) (types.Entity[M], error) {
	e := types.Entity[M]{Header: obj.Header()}
	if obj.Metadata == nil {
		return e, nil
	}
	if err := remarshal(obj.Metadata, &e.Metadata); err != nil {
		return types.Entity[M]{}, fmt.Errorf("decoding %s metadata: %w", c.kind, err)
	}
	return e, nil
}

func (c *Collection[M]) encode(m M) (map[string]any, error) {
	var bag map[string]any
	if err := remarshal(m, &bag); err != nil {
		return nil, fmt.Errorf("encoding %s metadata: %w", c.kind, err)
	}
	return WritableMetadata(c.schema, bag), nil
}

// remarshal converts between a metadata struct and the schema-free bag.
func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func sortNewestFirst[T any](items []T, header func(T) types.Header) {
	slices.SortStableFunc(items, func(a, b T) int {
		return header(b).CreatedAt.Compare(header(a).CreatedAt)
	})
}
