package service

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type analyzeRequest struct {
	Description *string `json:"description"`
}

// readDescription distinguishes a missing description field from a blank
// one: they produce different error messages.
func readDescription(r *http.Request) (string, string) {
	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil || req.Description == nil {
		return "", "No project description provided"
	}
	return *req.Description, ""
}

// AnalyzeProject handles POST /analyze_project, the synchronous analysis
// endpoint behind the landing page form. Guests are served too, only
// signed-in users get the result saved as a project.
func (s *WebService) AnalyzeProject(w http.ResponseWriter, r *http.Request) {
	description, errMsg := readDescription(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	result, err := s.analysis.Analyze(s.ctx(r), s.CurrentUser(r), description)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"analysis": result})
}

// AnalyzeAsync handles POST /api/analyze/async.
func (s *WebService) AnalyzeAsync(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	description, errMsg := readDescription(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	id, err := s.analysis.AnalyzeAsync(s.ctx(r), u, description)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"task_id": id})
}

// TaskStatus handles GET /api/analyze/status/{id}.
func (s *WebService) TaskStatus(w http.ResponseWriter, r *http.Request) {
	if u := s.requireUser(w, r); u == nil {
		return
	}
	task, err := s.analysis.TaskStatus(mux.Vars(r)["id"])
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"task": task})
}

// CancelTask handles POST /api/analyze/cancel/{id}.
func (s *WebService) CancelTask(w http.ResponseWriter, r *http.Request) {
	if u := s.requireUser(w, r); u == nil {
		return
	}
	if err := s.analysis.CancelTask(mux.Vars(r)["id"]); err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "Task cancelled"})
}

// Health handles GET /health. Reports per-component status and answers
// 503 when the database is unreachable.
func (s *WebService) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	components := map[string]string{}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			components["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			components["database"] = "ok"
		}
	}
	if s.analysis != nil {
		if s.analysis.EngineConfigured() {
			components["analyzer"] = "llm"
		} else {
			components["analyzer"] = "fallback"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	payload := map[string]any{
		"status":     state,
		"service":    "saasgenius",
		"components": components,
	}
	if s.analysis != nil {
		payload["tasks"] = s.analysis.TaskStats()
	}
	writeJSON(w, status, payload)
}

// Performance handles GET /performance: per-event usage counters plus
// the task registry snapshot.
func (s *WebService) Performance(w http.ResponseWriter, r *http.Request) {
	if u := s.requireUser(w, r); u == nil {
		return
	}
	events, err := s.analysis.UsageStats(s.ctx(r))
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{
		"events": events,
		"tasks":  s.analysis.TaskStats(),
	})
}

// Metrics handles GET /metrics with the JSON metrics snapshot.
func (s *WebService) Metrics(w http.ResponseWriter, r *http.Request) {
	data, err := s.metrics.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
