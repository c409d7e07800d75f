package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/kv"
	"recipebox/models"
	"recipebox/store"
)

func newTestServer(t *testing.T) (http.Handler, *kv.Memory, *store.RecipeStore) {
	t.Helper()
	mem := kv.NewMemory()
	reg := prometheus.NewRegistry()
	s := store.New(mem, store.WithMetrics(store.NewMetrics(reg)))
	h := NewRouter(s, RouterOptions{Logger: zerolog.Nop(), Gatherer: reg})
	return h, mem, s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeRecipes(t *testing.T, rec *httptest.ResponseRecorder) []models.Recipe {
	t.Helper()
	var out []models.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetRecipesEmpty(t *testing.T) {
	h, _, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateThenList(t *testing.T) {
	h, _, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/recipe", `{"title":"  Bolo ","time":" 45 min ","difficulty":"  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var bolo models.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bolo))
	assert.NotEmpty(t, bolo.ID)
	assert.Equal(t, "Bolo", bolo.Title)
	assert.Equal(t, "45 min", models.Value(bolo.Time))
	assert.Nil(t, bolo.Difficulty)

	rec = do(t, h, http.MethodPost, "/recipe", `{"title":"Salada"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeRecipes(t, do(t, h, http.MethodGet, "/recipes", ""))
	require.Len(t, got, 2)
	assert.Equal(t, "Salada", got[0].Title)
	assert.Equal(t, bolo, got[1])
}

func TestCreateIgnoresClientID(t *testing.T) {
	h, _, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/recipe", `{"id":"mine","title":"Bolo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"mine"`)
}

func TestCreateValidation(t *testing.T) {
	h, mem, _ := newTestServer(t)

	for name, body := range map[string]string{
		"blank title":   `{"title":"   "}`,
		"missing title": `{"time":"10 min"}`,
		"invalid json":  `{"title":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/recipe", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Equal(t, 0, mem.Sets())
}

func TestCreateStoreFailure(t *testing.T) {
	h, mem, _ := newTestServer(t)
	mem.SetFaults(kv.Faults{Set: errors.New("disk full")})

	rec := do(t, h, http.MethodPost, "/recipe", `{"title":"Bolo"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestGetRecipe(t *testing.T) {
	h, _, s := newTestServer(t)
	created, ok := s.Append(t.Context(), models.RecipePayload{Title: "Bolo"})
	require.True(t, ok)

	rec := do(t, h, http.MethodGet, "/recipe?id="+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/recipe?id=nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/recipe", "").Code)
}

func TestCountRecipes(t *testing.T) {
	h, _, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/recipe", `{"title":"Bolo"}`)
	do(t, h, http.MethodPost, "/recipe", `{"title":"Salada"}`)

	rec := do(t, h, http.MethodGet, "/recipes/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestClearRecipes(t *testing.T) {
	h, _, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/recipe", `{"title":"Bolo"}`)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/recipes", "").Code)
	assert.JSONEq(t, "[]", do(t, h, http.MethodGet, "/recipes", "").Body.String())
}

func TestListDegradesOnCorruptStore(t *testing.T) {
	h, mem, _ := newTestServer(t)
	require.NoError(t, mem.Set(t.Context(), store.DefaultKey, "not json"))

	rec := do(t, h, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMetricsAndHealth(t *testing.T) {
	h, _, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/recipe", `{"title":"Bolo"}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `recipebox_store_operations_total{op="append",result="ok"} 1`)

	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newTestServer(t)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPut, "/recipe", `{}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/recipe", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	s := store.New(kv.NewMemory())
	h := NewRouter(s, RouterOptions{Logger: zerolog.New(&buf)})

	rec := do(t, h, http.MethodPost, "/recipe", `{"title":"Bolo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 2)
	assert.Equal(t, "recipe created", entries[0]["message"])
	assert.Equal(t, "request served", entries[1]["message"])
	assert.Equal(t, "POST", entries[1]["method"])
	assert.Equal(t, "/recipe", entries[1]["path"])
	assert.EqualValues(t, http.StatusCreated, entries[1]["status"])
}

func TestCreateRejectsOversizedBody(t *testing.T) {
	h, mem, _ := newTestServer(t)
	body := `{"title":"Bolo","instructions":"` + strings.Repeat("a", maxRecipeBody) + `"}`

	rec := do(t, h, http.MethodPost, "/recipe", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, mem.Sets())
}
