package service

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/saasgenius/saasgenius/internal/biz"
	"github.com/saasgenius/saasgenius/internal/render"
)

func projectPayload(p *biz.Project) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"is_favorite": p.IsFavorite,
		"tags":        p.Tags,
		"created_at":  p.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

// Projects dispatches GET /api/projects.
func (s *WebService) Projects(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, limit = biz.ClampPage(page, limit)

	projects, total, err := s.projects.List(s.ctx(r), u.ID, page, limit)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	list := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		list = append(list, projectPayload(p))
	}
	writeSuccess(w, map[string]any{
		"projects": list,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// Project dispatches /api/projects/{id} by method.
func (s *WebService) Project(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.projects.Get(s.ctx(r), u.ID, id)
		if err != nil {
			s.writeBizError(w, err)
			return
		}
		payload := projectPayload(p)
		sections := render.RenderAll(p.AnalysisResult)
		rendered := make(map[string]string, len(sections))
		for sid, html := range sections {
			rendered[sid] = string(html)
		}
		payload["sections"] = rendered
		writeSuccess(w, map[string]any{"project": payload})
	case http.MethodPut, http.MethodPatch:
		var body map[string]any
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := s.projects.Update(s.ctx(r), u.ID, id, body); err != nil {
			s.writeBizError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"message": "Project updated"})
	case http.MethodDelete:
		if err := s.projects.Delete(s.ctx(r), u.ID, id); err != nil {
			s.writeBizError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"message": "Project deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ToggleFavorite handles POST /api/projects/{id}/favorite.
func (s *WebService) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	fav, err := s.projects.ToggleFavorite(s.ctx(r), u.ID, id)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"is_favorite": fav})
}

// ExportProject handles GET /api/projects/{id}/export?format=json|markdown|html.
func (s *WebService) ExportProject(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	format := biz.ExportFormat(r.URL.Query().Get("format"))
	body, contentType, err := s.projects.Export(s.ctx(r), u.ID, id, format)
	if err != nil {
		s.writeBizError(w, err)
		return
	}
	ext := map[biz.ExportFormat]string{
		biz.ExportMarkdown: "md",
		biz.ExportHTML:     "html",
	}[format]
	if ext == "" {
		ext = "json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="project-%d.%s"`, id, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// History handles GET /api/history.
func (s *WebService) History(w http.ResponseWriter, r *http.Request) {
	u := s.requireUser(w, r)
	if u == nil {
		return
	}
	entries := s.analysis.History(u)
	if entries == nil {
		entries = []map[string]any{}
	}
	writeSuccess(w, map[string]any{"history": entries})
}
