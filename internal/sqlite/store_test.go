package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// setupStore attaches a store to a temp dir with a clock that ticks one
// second per call.
func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, s.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = s.Detach() })
	return s, dir
}

func insert(t *testing.T, s *Store, kind types.Kind, title string, meta map[string]any) types.Object {
	t.Helper()
	obj, err := s.InsertOne(context.Background(), types.Insert{Type: string(kind), Title: title, Metadata: meta})
	require.NoError(t, err)
	return obj
}

func TestAttachLifecycle(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	require.NoError(t, s.Attach(cfg))
	assert.FileExists(t, filepath.Join(dir, dbFile))
	assert.FileExists(t, filepath.Join(dir, objectsFile))
	assert.ErrorIs(t, s.Attach(cfg), ErrAlreadyAttached)

	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach())

	_, err := s.Find(context.Background(), types.FindQuery{Type: "services"})
	assert.ErrorIs(t, err, ErrDetached)
	assert.ErrorIs(t, err, types.ErrorUnavailable)
}

func TestAttachRejectsBadConfig(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Attach(types.Config{}), types.ErrBackendEmpty)
}

func TestFindEmptyReportsNotFound(t *testing.T) {
	s, _ := setupStore(t)
	_, err := s.Find(context.Background(), types.FindQuery{Type: string(types.KindService)})
	assert.ErrorIs(t, err, types.ErrorNotFound)
}

func TestInsertAndFind(t *testing.T) {
	s, _ := setupStore(t)
	a := insert(t, s, types.KindService, "Web Design", map[string]any{"service_name": "Web"})
	insert(t, s, types.KindService, "Web Design", map[string]any{"service_name": "Web 2"})
	insert(t, s, types.KindTeamMember, "Ann", map[string]any{"full_name": "Ann"})

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "web-design", a.Slug)
	assert.Equal(t, a.CreatedAt, a.ModifiedAt)

	objs, err := s.Find(context.Background(), types.FindQuery{
		Type:  string(types.KindService),
		Props: types.Projection,
		Depth: 1,
	})
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "web-design", objs[0].Slug)
	assert.Equal(t, "web-design-2", objs[1].Slug)
	assert.Equal(t, "Web 2", objs[1].Metadata["service_name"])
	assert.True(t, objs[1].CreatedAt.After(objs[0].CreatedAt))
}

func TestInsertValidation(t *testing.T) {
	s, _ := setupStore(t)
	_, err := s.InsertOne(context.Background(), types.Insert{Type: "services"})
	assert.ErrorIs(t, err, types.ErrorInvalid)
	_, err = s.InsertOne(context.Background(), types.Insert{Title: "x"})
	assert.ErrorIs(t, err, types.ErrorInvalid)
}

func TestFindOne(t *testing.T) {
	s, _ := setupStore(t)
	a := insert(t, s, types.KindService, "Web", nil)

	got, err := s.FindOne(context.Background(), types.FindOneQuery{ID: a.ID, Type: string(types.KindService)})
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, map[string]any{}, got.Metadata)

	_, err = s.FindOne(context.Background(), types.FindOneQuery{ID: a.ID, Type: string(types.KindCaseStudy)})
	assert.ErrorIs(t, err, types.ErrorNotFound)
	_, err = s.FindOne(context.Background(), types.FindOneQuery{ID: "missing"})
	assert.ErrorIs(t, err, types.ErrorNotFound)
}

func TestUpdateOne(t *testing.T) {
	s, _ := setupStore(t)
	a := insert(t, s, types.KindService, "Web", map[string]any{"service_name": "Web", "starting_price": "$1"})

	title := "Web Design"
	got, err := s.UpdateOne(context.Background(), a.ID, types.Update{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Web Design", got.Title)
	assert.Equal(t, "$1", got.Metadata["starting_price"])
	assert.True(t, got.ModifiedAt.After(a.ModifiedAt))
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
	assert.Equal(t, a.Slug, got.Slug)

	got, err = s.UpdateOne(context.Background(), a.ID, types.Update{Metadata: map[string]any{"service_name": "Web"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"service_name": "Web"}, got.Metadata)

	_, err = s.UpdateOne(context.Background(), "missing", types.Update{Title: &title})
	assert.ErrorIs(t, err, types.ErrorNotFound)

	empty := ""
	_, err = s.UpdateOne(context.Background(), a.ID, types.Update{Title: &empty})
	assert.ErrorIs(t, err, types.ErrorInvalid)
}

func TestDeleteOne(t *testing.T) {
	s, _ := setupStore(t)
	a := insert(t, s, types.KindService, "Web", nil)

	require.NoError(t, s.DeleteOne(context.Background(), a.ID))
	assert.ErrorIs(t, s.DeleteOne(context.Background(), a.ID), types.ErrorNotFound)
	_, err := s.Find(context.Background(), types.FindQuery{Type: string(types.KindService)})
	assert.ErrorIs(t, err, types.ErrorNotFound)
}

func TestDepthExpansion(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	svc := insert(t, s, types.KindService, "Web", map[string]any{"service_name": "Web"})
	tm := insert(t, s, types.KindTeamMember, "Ann", map[string]any{"full_name": "Ann", "profile_photo": "ann.png"})
	gone := insert(t, s, types.KindTeamMember, "Gone", map[string]any{"full_name": "Gone"})
	testimonial := insert(t, s, types.KindTestimonial, "Great", map[string]any{
		"client_name":      "Sam",
		"testimonial_text": "Great",
		"rating":           "5",
		"related_service":  svc.ID,
	})
	cs := insert(t, s, types.KindCaseStudy, "Acme", map[string]any{
		"client_name":   "Acme",
		"team_members":  []any{tm.ID, gone.ID},
		"services_used": []any{svc.ID},
	})
	require.NoError(t, s.DeleteOne(ctx, gone.ID))

	got, err := s.FindOne(ctx, types.FindOneQuery{ID: testimonial.ID, Depth: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"key": "5", "value": "5"}, got.Metadata["rating"])
	ref, ok := got.Metadata["related_service"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, svc.ID, ref["id"])
	assert.Equal(t, "Web", ref["title"])

	got, err = s.FindOne(ctx, types.FindOneQuery{ID: cs.ID, Depth: 2})
	require.NoError(t, err)
	members, ok := got.Metadata["team_members"].([]any)
	require.True(t, ok)
	require.Len(t, members, 1)
	member := members[0].(map[string]any)
	assert.Equal(t, tm.ID, member["id"])
	assert.Equal(t, map[string]any{"name": "ann.png"}, member["metadata"].(map[string]any)["profile_photo"])

	raw, err := s.FindOne(ctx, types.FindOneQuery{ID: cs.ID})
	require.NoError(t, err)
	assert.Equal(t, []any{tm.ID, gone.ID}, raw.Metadata["team_members"])
}

func TestProjection(t *testing.T) {
	s, _ := setupStore(t)
	a := insert(t, s, types.KindService, "Web", map[string]any{"service_name": "Web"})

	got, err := s.FindOne(context.Background(), types.FindOneQuery{ID: a.ID, Props: []string{"id", "title"}})
	require.NoError(t, err)
	assert.Equal(t, "Web", got.Title)
	assert.Empty(t, got.Slug)
	assert.Nil(t, got.Metadata)
	assert.True(t, got.CreatedAt.IsZero())
}

func TestWritesPersistAcrossAttach(t *testing.T) {
	s, dir := setupStore(t)
	a := insert(t, s, types.KindService, "Web", map[string]any{"service_name": "Web"})
	b := insert(t, s, types.KindService, "SEO", map[string]any{"service_name": "SEO"})
	require.NoError(t, s.DeleteOne(context.Background(), b.ID))
	require.NoError(t, s.Detach())

	data, err := os.ReadFile(filepath.Join(dir, objectsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], a.ID)

	reopened := NewStore()
	require.NoError(t, reopened.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer reopened.Detach()
	got, err := reopened.FindOne(context.Background(), types.FindOneQuery{ID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, "Web", got.Title)
	assert.True(t, got.CreatedAt.Equal(a.CreatedAt))
}

func TestSeedSample(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	n, err := s.SeedSample(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = s.SeedSample(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, kind := range types.Kinds {
		objs, err := s.Find(ctx, types.FindQuery{Type: string(kind), Depth: kind.Depth()})
		require.NoError(t, err, kind)
		assert.Len(t, objs, 1)
	}
	cs, err := s.Find(ctx, types.FindQuery{Type: string(types.KindCaseStudy), Depth: 2})
	require.NoError(t, err)
	used := cs[0].Metadata["services_used"].([]any)
	require.Len(t, used, 1)
	assert.Equal(t, "Web Design", used[0].(map[string]any)["title"])
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Web Design", "web-design"},
		{"  SEO & Content!! ", "seo-content"},
		{"Case Study #3", "case-study-3"},
		{"!!!", "fallback"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.title, "fallback"), tt.title)
	}
}
