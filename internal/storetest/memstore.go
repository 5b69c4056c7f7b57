// Package storetest provides an in-memory types.ContentStore for tests.
// It mimics the hosted store's observable behavior (404 on an empty find,
// partial updates, store-assigned ids and timestamps), records every call,
// and lets tests inject failures per operation or per collection.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Operation names used in Call.Op and Store.FailOp.
const (
	OpFind      = "find"
	OpFindOne   = "find_one"
	OpInsertOne = "insert_one"
	OpUpdateOne = "update_one"
	OpDeleteOne = "delete_one"
)

// Call records one store invocation.
type Call struct {
	Op     string
	Type   string
	ID     string
	Depth  int
	Props  []string
	Insert types.Insert
	Update types.Update
}

// Store is a concurrency-safe in-memory ContentStore.
type Store struct {
	mu      sync.Mutex
	objects []types.Object
	seq     int
	clock   time.Time

	calls    []Call
	failOp   map[string]error
	failType map[string]error
}

var _ types.ContentStore = (*Store)(nil)

// New returns an empty store whose clock starts at 2024-01-01 UTC and
// advances one second per write.
func New() *Store {
	return &Store{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failOp:   make(map[string]error),
		failType: make(map[string]error),
	}
}

// Seed adds objects as-is, keeping their ids and timestamps.
func (s *Store) Seed(objs ...types.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range objs {
		s.objects = append(s.objects, cloneObject(o))
	}
}

// SetClock moves the store clock; the next write is stamped one second
// after t.
func (s *Store) SetClock(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = t
}

// FailOp makes every call of op return err until cleared with a nil err.
func (s *Store) FailOp(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOp, op)
		return
	}
	s.failOp[op] = err
}

// FailType makes Find on the given collection type return err.
func (s *Store) FailType(typ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failType, typ)
		return
	}
	s.failType[typ] = err
}

// Calls returns a copy of the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many times op was invoked.
func (s *Store) CallCount(op string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Len returns the number of stored objects of typ.
func (s *Store) Len(typ string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.objects {
		if o.Type == typ {
			n++
		}
	}
	return n
}

// NotFound builds the error the hosted store returns for a missing
// object or empty collection.
func NotFound(op string) error {
	return &types.StoreError{Op: op, Kind: types.ErrorNotFound, Status: 404, Msg: "no objects found"}
}

// Unavailable builds a server-side failure.
func Unavailable(op string) error {
	return &types.StoreError{Op: op, Kind: types.ErrorUnavailable, Status: 503, Msg: "service unavailable"}
}

func (s *Store) record(c Call) error {
	s.calls = append(s.calls, c)
	return s.failOp[c.Op]
}

func (s *Store) Find(ctx context.Context, q types.FindQuery) ([]types.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpFind, Type: q.Type, Depth: q.Depth, Props: q.Props}); err != nil {
		return nil, err
	}
	if err := s.failType[q.Type]; err != nil {
		return nil, err
	}
	var out []types.Object
	for _, o := range s.objects {
		if o.Type == q.Type {
			out = append(out, cloneObject(o))
		}
	}
	if len(out) == 0 {
		return nil, NotFound(OpFind)
	}
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, q types.FindOneQuery) (types.Object, error) {
	if err := ctx.Err(); err != nil {
		return types.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpFindOne, Type: q.Type, ID: q.ID, Depth: q.Depth, Props: q.Props}); err != nil {
		return types.Object{}, err
	}
	i := s.index(q.ID)
	if i < 0 || (q.Type != "" && s.objects[i].Type != q.Type) {
		return types.Object{}, NotFound(OpFindOne)
	}
	return cloneObject(s.objects[i]), nil
}

func (s *Store) InsertOne(ctx context.Context, in types.Insert) (types.Object, error) {
	if err := ctx.Err(); err != nil {
		return types.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpInsertOne, Type: in.Type, Insert: in}); err != nil {
		return types.Object{}, err
	}
	s.seq++
	now := s.tick()
	obj := types.Object{
		ID:         fmt.Sprintf("obj-%03d", s.seq),
		Type:       in.Type,
		Title:      in.Title,
		Slug:       strings.ReplaceAll(strings.ToLower(strings.TrimSpace(in.Title)), " ", "-"),
		Metadata:   cloneMap(in.Metadata),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	s.objects = append(s.objects, obj)
	return cloneObject(obj), nil
}

func (s *Store) UpdateOne(ctx context.Context, id string, u types.Update) (types.Object, error) {
	if err := ctx.Err(); err != nil {
		return types.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpUpdateOne, ID: id, Update: u}); err != nil {
		return types.Object{}, err
	}
	i := s.index(id)
	if i < 0 {
		return types.Object{}, NotFound(OpUpdateOne)
	}
	if u.Title != nil {
		s.objects[i].Title = *u.Title
	}
	if u.Metadata != nil {
		s.objects[i].Metadata = cloneMap(u.Metadata)
	}
	s.objects[i].ModifiedAt = s.tick()
	return cloneObject(s.objects[i]), nil
}

func (s *Store) DeleteOne(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpDeleteOne, ID: id}); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return NotFound(OpDeleteOne)
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	return nil
}

func (s *Store) index(id string) int {
	for i, o := range s.objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func cloneObject(o types.Object) types.Object {
	o.Metadata = cloneMap(o.Metadata)
	return o
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
