package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasgenius/saasgenius/internal/biz"
	"github.com/saasgenius/saasgenius/internal/cache"
	"github.com/saasgenius/saasgenius/internal/history"
	"github.com/saasgenius/saasgenius/internal/metrics"
)

func newGuestService() *WebService {
	return NewWebService(nil, nil, nil, nil, metrics.NewCollector(), log.DefaultLogger)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGuestsGetAuthenticationRequired(t *testing.T) {
	s := newGuestService()
	handlers := map[string]http.HandlerFunc{
		"/api/projects": s.Projects,
		"/api/history":  s.History,
		"/auth/profile": s.Profile,
	}
	for path, h := range handlers {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		out := decodeEnvelope(t, rec)
		assert.Equal(t, false, out["success"], path)
		assert.Equal(t, "Authentication required", out["error"], path)
	}
}

type fixedAnalyzer struct{}

func (fixedAnalyzer) Analyze(ctx context.Context, description string) map[string]any {
	return map[string]any{
		"project_name":      "Guest Idea",
		"executive_summary": "A summary.",
	}
}

func (fixedAnalyzer) Configured() bool { return false }

type noopAnalytics struct{}

func (noopAnalytics) RecordEvent(ctx context.Context, userID *int, eventType, eventData string) {}

func (noopAnalytics) CountEvents(ctx context.Context, eventType string) (int, error) {
	return 0, nil
}

func TestGuestAnalyzeProjectSucceeds(t *testing.T) {
	logger := log.DefaultLogger
	uc := biz.NewAnalysisUseCase(
		fixedAnalyzer{}, nil, noopAnalytics{},
		cache.New(10, time.Minute), history.NewStore(t.TempDir(), logger),
		nil, metrics.NewCollector(), logger,
	)
	s := NewWebService(nil, nil, uc, nil, metrics.NewCollector(), logger)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze_project",
		strings.NewReader(`{"description": "an invoicing platform for freelancers"}`))
	s.AnalyzeProject(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeEnvelope(t, rec)
	assert.Equal(t, true, out["success"])
	analysis, ok := out["analysis"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Guest Idea", analysis["project_name"])
	assert.NotContains(t, analysis, "project_id")
}

func TestReadDescription(t *testing.T) {
	mk := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/analyze_project", strings.NewReader(body))
	}

	_, msg := readDescription(mk(`{}`))
	assert.Equal(t, "No project description provided", msg)

	_, msg = readDescription(mk(`not json`))
	assert.Equal(t, "No project description provided", msg)

	desc, msg := readDescription(mk(`{"description": ""}`))
	assert.Empty(t, msg)
	assert.Equal(t, "", desc)

	desc, msg = readDescription(mk(`{"description": "a CRM for dog walkers"}`))
	assert.Empty(t, msg)
	assert.Equal(t, "a CRM for dog walkers", desc)
}

func TestHealth(t *testing.T) {
	s := newGuestService()
	rec := httptest.NewRecorder()
	s.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newGuestService()
	s.metrics.Inc("test.counter")

	rec := httptest.NewRecorder()
	s.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out, "counters")
	assert.Contains(t, out, "system")
}

func TestEnvelopeWriters(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, map[string]any{"value": 1})
	out := decodeEnvelope(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(1), out["value"])

	rec = httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out = decodeEnvelope(t, rec)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "nope", out["error"])
}
