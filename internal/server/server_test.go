// ABOUTME: Tests for the document server routes and access middleware.
// ABOUTME: Drives the echo router through httptest with a temp-dir file store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/medtrack/internal/models"
	"github.com/harperreed/medtrack/internal/resolver"
	"github.com/harperreed/medtrack/internal/storage"
)

const (
	testKey    = "secret-key"
	testOrigin = "https://tracker.example.com"
)

type stubSearcher map[string][]string

func (s stubSearcher) TopReactions(_ context.Context, medication string) ([]string, error) {
	if terms, ok := s[medication]; ok {
		return terms, nil
	}
	return nil, errors.New("offline")
}

func setupServer(t *testing.T) (*Server, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), storage.DefaultFileName), zerolog.Nop())
	require.NoError(t, err)
	res := resolver.New(stubSearcher{"Zoloft": {"NAUSEA", "DRUG INEFFECTIVE"}}, zerolog.Nop())
	srv := New(Options{APIKey: testKey, AllowedOrigin: testOrigin}, store, res, zerolog.Nop())
	return srv, store
}

func do(t *testing.T, srv *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(APIKeyHeader, testKey)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestForbiddenWithoutKey(t *testing.T) {
	srv, _ := setupServer(t)

	for _, key := range []string{"", "wrong"} {
		rec := do(t, srv, http.MethodGet, "/api/data", "", map[string]string{APIKeyHeader: key})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, map[string]string{"error": "Forbidden"}, decode[map[string]string](t, rec))
	}
}

func TestForbiddenForeignOrigin(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv, http.MethodGet, "/api/data", "", map[string]string{echo.HeaderOrigin: "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/data", "", map[string]string{echo.HeaderOrigin: testOrigin})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestGetDataDefault(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv, http.MethodGet, "/api/data", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[models.PatientState](t, rec)
	assert.Equal(t, models.DefaultState(), doc)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestPutThenGet(t *testing.T) {
	srv, store := setupServer(t)

	rec := do(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, "empty", decode[HealthResponse](t, rec).DataFile)

	rec = do(t, srv, http.MethodPut, "/api/data", `{"notes":"hello","theme":"dark","medications":[{"id":"m1","name":"Sertraline","startDate":"2025-03-01","sideEffects":["nausea"]}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[saveResponse](t, rec)
	assert.True(t, saved.OK)
	assert.False(t, saved.SavedAt.IsZero())
	assert.True(t, store.Exists())

	rec = do(t, srv, http.MethodGet, "/api/data", "", nil)
	doc := decode[models.PatientState](t, rec)
	assert.Equal(t, "hello", doc.Notes)
	assert.Equal(t, models.ThemeDark, doc.Theme)
	require.Len(t, doc.Medications, 1)
	assert.Contains(t, rec.Body.String(), `"sideEffects":["nausea"]`)

	rec = do(t, srv, http.MethodGet, "/api/health", "", nil)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "exists", health.DataFile)
	assert.Equal(t, testOrigin, health.Origin)
}

func TestPutRejectsNonObject(t *testing.T) {
	srv, store := setupServer(t)

	for _, body := range []string{`[1,2]`, `"text"`, `null`, `{broken`} {
		rec := do(t, srv, http.MethodPut, "/api/data", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, decode[map[string]string](t, rec), "error")
	}
	assert.False(t, store.Exists())
}

func TestPutBodyLimit(t *testing.T) {
	srv, _ := setupServer(t)

	big := `{"notes":"` + strings.Repeat("x", 2<<20) + `"}`
	rec := do(t, srv, http.MethodPut, "/api/data", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSideEffects(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv, http.MethodPost, "/api/side-effects", `{"medication":"Zoloft"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[sideEffectsResponse](t, rec)
	require.Len(t, resp.SideEffects, 1)
	assert.Equal(t, "Nausea", resp.SideEffects[0].Name)

	rec = do(t, srv, http.MethodPost, "/api/side-effects", `{"medication":"Sertraline"}`, nil)
	resp = decode[sideEffectsResponse](t, rec)
	assert.NotEmpty(t, resp.SideEffects, "static table answers when the live lookup fails")

	rec = do(t, srv, http.MethodPost, "/api/side-effects", `{"medication":"Xyzzyplex"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sideEffects":[]}`, rec.Body.String())
}

func TestSideEffectsBlankMedication(t *testing.T) {
	srv, _ := setupServer(t)

	for _, body := range []string{`{}`, `{"medication":"   "}`, `not json`} {
		rec := do(t, srv, http.MethodPost, "/api/side-effects", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestAPIKeyMiddlewareEmptyKeyRejects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := APIKey("")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	err := h(c)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequestIDPreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error {
		assert.Equal(t, "my-custom-id", c.Get("request_id"))
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.Equal(t, "my-custom-id", rec.Header().Get(RequestIDHeader))
}

func TestRecoveryCatchesPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("test panic")
	})
	err := h(c)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}
