package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/internal/storetest"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

func setupServer(t *testing.T) (*Server, *storetest.Store) {
	t.Helper()
	store := storetest.New()
	return New(content.NewCatalog(store, nil), nil, Options{}), store
}

func seedService(store *storetest.Store, id, title string, day int) {
	ts := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	store.Seed(types.Object{
		ID:         id,
		Type:       string(types.KindService),
		Title:      title,
		Metadata:   map[string]any{"service_name": title, "starting_price": "$1"},
		CreatedAt:  ts,
		ModifiedAt: ts,
	})
}

func do(t *testing.T, s *Server, method, target, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp.StatusCode, out
}

func itemIDs(t *testing.T, view map[string]any) []string {
	t.Helper()
	items, ok := view["items"].([]any)
	require.True(t, ok, "items missing from %v", view)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.(map[string]any)["id"].(string)
	}
	return out
}

func TestHealthz(t *testing.T) {
	s, _ := setupServer(t)
	status, _ := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestKinds(t *testing.T) {
	s, _ := setupServer(t)
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/kinds", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var kinds []kindInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&kinds))
	require.Len(t, kinds, 4)
	assert.Equal(t, types.KindService, kinds[0].Kind)
	assert.Equal(t, "Team Member", kinds[1].Label)
	assert.NotEmpty(t, kinds[3].Fields)
}

func TestListLoadsLazilyAndSorts(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Old", 1)
	seedService(store, "s2", "New", 2)

	assert.Zero(t, store.CallCount(storetest.OpFind))
	status, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", view["state"])
	assert.Equal(t, []string{"s2", "s1"}, itemIDs(t, view))

	do(t, s, http.MethodGet, "/api/service", "")
	assert.Equal(t, 1, store.CallCount(storetest.OpFind), "held list is not refetched")
}

func TestUnknownKind(t *testing.T) {
	s, _ := setupServer(t)
	status, body := do(t, s, http.MethodGet, "/api/widgets", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "resource not found", body["error"])
}

func TestListErrorAndReload(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Web", 1)
	store.FailOp(storetest.OpFind, storetest.Unavailable(storetest.OpFind))

	status, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "error", view["state"])
	assert.Equal(t, "Failed to load services", view["error"])

	store.FailOp(storetest.OpFind, nil)
	status, view = do(t, s, http.MethodPost, "/api/services/reload", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"s1"}, itemIDs(t, view))
}

func TestGetOne(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Web", 1)

	status, body := do(t, s, http.MethodGet, "/api/services/s1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Web", body["title"])

	status, _ = do(t, s, http.MethodGet, "/api/services/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateValidationFailureMakesNoCall(t *testing.T) {
	s, store := setupServer(t)

	status, body := do(t, s, http.MethodPost, "/api/services", `{"title":"Web","metadata":{"service_name":""}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Title and service name are required", body["error"])
	assert.Equal(t, []any{"service_name"}, body["missing"])
	assert.Zero(t, store.CallCount(storetest.OpInsertOne))
}

func TestCreatePrependsToHeldList(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Old", 1)
	do(t, s, http.MethodGet, "/api/services", "")

	status, body := do(t, s, http.MethodPost, "/api/services",
		`{"title":"SEO","metadata":{"service_name":"SEO","key_features":["Audit","Audit"]}}`)
	require.Equal(t, http.StatusCreated, status)
	newID := body["id"].(string)
	assert.Equal(t, []any{"Audit", "Audit"}, body["metadata"].(map[string]any)["key_features"])

	_, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Equal(t, []string{newID, "s1"}, itemIDs(t, view))
	assert.Equal(t, 1, store.CallCount(storetest.OpFind))
}

func TestCreateBeforeFirstListAddsOnce(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Old", 1)

	status, body := do(t, s, http.MethodPost, "/api/services",
		`{"title":"SEO","metadata":{"service_name":"SEO"}}`)
	require.Equal(t, http.StatusCreated, status)
	newID := body["id"].(string)

	_, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Equal(t, []string{newID, "s1"}, itemIDs(t, view))
}

func TestOptionsReachFiber(t *testing.T) {
	s := New(content.NewCatalog(storetest.New(), nil), nil, Options{
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 7 * time.Second,
	})
	assert.Equal(t, 3*time.Second, s.App().Config().ReadTimeout)
	assert.Equal(t, 7*time.Second, s.App().Config().WriteTimeout)
}

func TestCreateStoreFailure(t *testing.T) {
	s, store := setupServer(t)
	store.FailOp(storetest.OpInsertOne, storetest.Unavailable(storetest.OpInsertOne))

	status, body := do(t, s, http.MethodPost, "/api/services", `{"title":"SEO","metadata":{"service_name":"SEO"}}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Failed to save service", body["error"])
}

func TestCreateUnknownField(t *testing.T) {
	s, _ := setupServer(t)
	status, _ := do(t, s, http.MethodPost, "/api/services", `{"title":"SEO","metadata":{"colour":"red"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateSendsFullMetadataAndPatchesList(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Web", 1)
	seedService(store, "s2", "SEO", 2)
	do(t, s, http.MethodGet, "/api/services", "")

	status, body := do(t, s, http.MethodPatch, "/api/services/s1", `{"metadata":{"starting_price":"$2"}}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "$2", body["metadata"].(map[string]any)["starting_price"])

	calls := store.Calls()
	update := calls[len(calls)-1]
	require.Equal(t, storetest.OpUpdateOne, update.Op)
	require.NotNil(t, update.Update.Title)
	assert.Equal(t, "Web", *update.Update.Title)
	assert.Equal(t, "Web", update.Update.Metadata["service_name"])
	assert.Equal(t, "$2", update.Update.Metadata["starting_price"])

	_, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Equal(t, []string{"s2", "s1"}, itemIDs(t, view))
	first := view["items"].([]any)[1].(map[string]any)
	assert.Equal(t, "$2", first["metadata"].(map[string]any)["starting_price"])
}

func TestUpdateMissing(t *testing.T) {
	s, _ := setupServer(t)
	status, _ := do(t, s, http.MethodPatch, "/api/services/nope", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Web", 1)

	status, body := do(t, s, http.MethodDelete, "/api/services/s1", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, `Are you sure you want to delete "Web"?`, body["error"])
	assert.Zero(t, store.CallCount(storetest.OpDeleteOne))

	status, _ = do(t, s, http.MethodDelete, "/api/services/s1?confirm=true", "")
	assert.Equal(t, http.StatusNoContent, status)

	_, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Empty(t, itemIDs(t, view))
}

func TestDeleteTestimonialPrompt(t *testing.T) {
	s, store := setupServer(t)
	store.Seed(types.Object{
		ID:       "t1",
		Type:     string(types.KindTestimonial),
		Title:    "Great",
		Metadata: map[string]any{"client_name": "Sam", "testimonial_text": "Great"},
	})

	status, body := do(t, s, http.MethodDelete, "/api/testimonials/t1", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, `Are you sure you want to delete the testimonial from "Sam"?`, body["error"])
}

func TestDeleteFailureKeepsList(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Web", 1)
	store.FailOp(storetest.OpDeleteOne, storetest.Unavailable(storetest.OpDeleteOne))

	status, body := do(t, s, http.MethodDelete, "/api/services/s1?confirm=true", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Failed to delete service", body["error"])

	_, view := do(t, s, http.MethodGet, "/api/services", "")
	assert.Equal(t, []string{"s1"}, itemIDs(t, view))
}

func TestOverview(t *testing.T) {
	s, store := setupServer(t)
	seedService(store, "s1", "Web", 1)

	status, body := do(t, s, http.MethodGet, "/api/overview", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["counts"].(map[string]any)["services"])

	store.FailType(string(types.KindCaseStudy), storetest.Unavailable(storetest.OpFind))
	status, body = do(t, s, http.MethodGet, "/api/overview", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "failed to load dashboard data", body["error"])
}
