package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/protein-tracker/internal/auth"
	"github.com/vladimiradmaev/protein-tracker/internal/database"
	"github.com/vladimiradmaev/protein-tracker/internal/ratelimit"
	"github.com/vladimiradmaev/protein-tracker/internal/repository"
	"github.com/vladimiradmaev/protein-tracker/internal/services"
	"gorm.io/gorm"
)

type stubProvider struct {
	calls atomic.Int32
	err   error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(context.Context, string) (string, error) {
	p.calls.Add(1)
	if p.err != nil {
		return "", p.err
	}
	return "Have a tuna sandwich for about 30g protein.", nil
}

type testServer struct {
	handler  http.Handler
	provider *stubProvider
	jwt      *auth.JWT
	store    *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db, logger))
	store := repository.NewStore(db)

	provider := &stubProvider{}
	tracker := services.NewTrackerService(store.DailyLogs, store.Entries, 120, logger)
	suggestions := services.NewSuggestionService(provider, ratelimit.NewSlidingWindow(5, time.Hour), time.Second, logger)
	verifier := auth.NewJWT("test-secret", "protein-tracker", time.Hour)

	h := NewHandler(tracker, suggestions, store, logger)
	return &testServer{
		handler:  NewRouter(h, verifier, time.UTC, logger),
		provider: provider,
		jwt:      verifier,
		store:    store,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authHeaders(t *testing.T, userID string) map[string]string {
	token, err := s.jwt.Issue(userID)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuggestionEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/suggestion",
		`{"remainingProtein": 100, "todayEntries": [{"food_name": "Greek yogurt", "protein_grams": 20}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Have a tuna sandwich for about 30g protein.", decode(t, rec)["suggestion"])
}

func TestSuggestionEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/suggestion", `{"remainingProtein": -1, "todayEntries": []}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid remainingProtein value", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/suggestion", `{"remainingProtein": 10, "todayEntries": "not a list"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid todayEntries value", decode(t, rec)["error"])

	assert.Zero(t, s.provider.calls.Load())
}

func TestSuggestionEndpointMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := s.do(t, method, "/api/suggestion", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "Method not allowed", decode(t, rec)["error"])
	}
}

func TestProtectedRoutesMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	headers := s.authHeaders(t, "user-1")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/today"},
		{http.MethodGet, "/api/entries"},
		{http.MethodGet, "/api/entries/" + uuid.NewString()},
		{http.MethodPatch, "/api/suggestion"},
	} {
		rec := s.do(t, tc.method, tc.path, "", headers)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tc.method+" "+tc.path)
	}

	rec := s.do(t, http.MethodGet, "/api/unknown", "", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode(t, rec)["error"])
}

func TestSuggestionEndpointRateLimitPerClientIP(t *testing.T) {
	s := newTestServer(t)
	body := `{"remainingProtein": 50, "todayEntries": []}`
	fromA := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}

	for i := 0; i < 5; i++ {
		rec := s.do(t, http.MethodPost, "/api/suggestion", body, fromA)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/api/suggestion", body, fromA)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Too many requests. Please try again later.", resp["error"])
	retryAfter, ok := resp["retryAfter"].(float64)
	require.True(t, ok)
	assert.Greater(t, retryAfter, 0.0)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, int32(5), s.provider.calls.Load())

	rec = s.do(t, http.MethodPost, "/api/suggestion", body, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSuggestionEndpointHidesProviderError(t *testing.T) {
	s := newTestServer(t)
	s.provider.err = errors.New("quota exceeded for key AIza-secret")

	rec := s.do(t, http.MethodPost, "/api/suggestion", `{"remainingProtein": 50, "todayEntries": []}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate suggestion. Please try again.", decode(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "AIza-secret")
}

func TestTodayRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header required", decode(t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/api/today", "", map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/entries", `{"food_name": "Tuna", "protein_grams": 25}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRejectedMutationsDoNotResolveTheDay(t *testing.T) {
	s := newTestServer(t)
	headers := s.authHeaders(t, "user-1")

	rec := s.do(t, http.MethodDelete, "/api/entries/"+uuid.NewString(), "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Deletion must be confirmed", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/entries", `{"food_name": "  ", "protein_grams": 10}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var logs int64
	require.NoError(t, s.store.GetDB().Model(&database.DailyLog{}).Count(&logs).Error)
	assert.Zero(t, logs)
}

func TestEntryLifecycle(t *testing.T) {
	s := newTestServer(t)
	headers := s.authHeaders(t, "user-1")

	rec := s.do(t, http.MethodGet, "/api/today", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	today := decode(t, rec)
	assert.Empty(t, today["entries"])
	assert.Equal(t, 120.0, today["progress"].(map[string]interface{})["remaining"])

	rec = s.do(t, http.MethodPost, "/api/entries", `{"food_name": "Greek yogurt", "protein_grams": 20, "meal_time": "snack"}`, headers)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	progress := created["progress"].(map[string]interface{})
	assert.Equal(t, 20.0, progress["total"])
	assert.Equal(t, 100.0, progress["remaining"])
	entryID := created["entry"].(map[string]interface{})["id"].(string)

	rec = s.do(t, http.MethodGet, "/api/today", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["entries"], 1)

	// other users cannot see or delete it
	other := s.authHeaders(t, "user-2")
	rec = s.do(t, http.MethodGet, "/api/today", "", other)
	assert.Empty(t, decode(t, rec)["entries"])
	rec = s.do(t, http.MethodDelete, "/api/entries/"+entryID+"?confirm=true", "", other)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/entries/"+entryID, "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/entries/"+entryID+"?confirm=true", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	progress = decode(t, rec)["progress"].(map[string]interface{})
	assert.Equal(t, 0.0, progress["total"])
	assert.Equal(t, 120.0, progress["remaining"])

	rec = s.do(t, http.MethodDelete, "/api/entries/"+uuid.NewString()+"?confirm=true", "", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/entries/not-a-uuid?confirm=true", "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddEntryValidation(t *testing.T) {
	s := newTestServer(t)
	headers := s.authHeaders(t, "user-1")

	for _, body := range []string{
		`{"food_name": "", "protein_grams": 10}`,
		`{"food_name": "Tuna"}`,
		`{"food_name": "Tuna", "protein_grams": -5}`,
		`{"food_name": "Tuna", "protein_grams": 5, "meal_time": "brunch"}`,
		`not json`,
	} {
		rec := s.do(t, http.MethodPost, "/api/entries", body, headers)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestTodayUsesTimezoneHeader(t *testing.T) {
	s := newTestServer(t)
	headers := s.authHeaders(t, "user-1")
	headers["X-Timezone"] = "Pacific/Kiritimati"

	rec := s.do(t, http.MethodGet, "/api/today", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)

	kiritimati, err := time.LoadLocation("Pacific/Kiritimati")
	require.NoError(t, err)
	wantDate := time.Now().In(kiritimati).Format("2006-01-02")
	assert.Equal(t, wantDate, decode(t, rec)["log"].(map[string]interface{})["date"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	require.NoError(t, s.store.Close())
	rec = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.9")
	assert.Equal(t, "198.51.100.9", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(req))
}
