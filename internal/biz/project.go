package biz

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/saasgenius/saasgenius/internal/render"
)

// Project entity. AnalysisResult holds the raw analysis JSON exactly as it
// was produced; rendering and export decode it on demand.
type Project struct {
	ID             int
	UserID         int
	Title          string
	Description    string
	AnalysisResult []byte
	IsFavorite     bool
	Tags           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectRepo is the persistence contract for projects.
type ProjectRepo interface {
	CreateProject(ctx context.Context, p *Project) (int, error)
	GetProject(ctx context.Context, userID, id int) (*Project, error)
	ListProjects(ctx context.Context, userID, page, pageSize int) ([]*Project, int, error)
	UpdateProject(ctx context.Context, userID, id int, fields map[string]any) error
	DeleteProject(ctx context.Context, userID, id int) error
	ToggleFavorite(ctx context.Context, userID, id int) (bool, error)
}

// ExportFormat selects the export renderer.
type ExportFormat string

const (
	ExportJSON     ExportFormat = "json"
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
)

// ProjectUseCase holds the dashboard project operations.
type ProjectUseCase struct {
	repo      ProjectRepo
	analytics AnalyticsRepo
	log       *log.Helper
}

func NewProjectUseCase(repo ProjectRepo, analytics AnalyticsRepo, logger log.Logger) *ProjectUseCase {
	return &ProjectUseCase{
		repo:      repo,
		analytics: analytics,
		log:       log.NewHelper(logger),
	}
}

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

// ClampPage normalizes pagination parameters to the dashboard bounds.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// List returns one dashboard page of the user's projects, newest first.
func (uc *ProjectUseCase) List(ctx context.Context, userID, page, pageSize int) ([]*Project, int, error) {
	page, pageSize = ClampPage(page, pageSize)
	return uc.repo.ListProjects(ctx, userID, page, pageSize)
}

func (uc *ProjectUseCase) Get(ctx context.Context, userID, id int) (*Project, error) {
	return uc.repo.GetProject(ctx, userID, id)
}

// updatableFields maps request keys to columns. Anything else in the
// request body is ignored.
var updatableFields = map[string]string{
	"title":       "title",
	"description": "description",
	"is_favorite": "is_favorite",
	"tags":        "tags",
}

// Update applies a partial update from a request body.
func (uc *ProjectUseCase) Update(ctx context.Context, userID, id int, body map[string]any) error {
	fields := make(map[string]any)
	for key, col := range updatableFields {
		if val, ok := body[key]; ok {
			fields[col] = val
		}
	}
	if len(fields) == 0 {
		return errors.BadRequest("NO_FIELDS", "No valid fields to update")
	}
	if err := uc.repo.UpdateProject(ctx, userID, id, fields); err != nil {
		return err
	}
	uc.analytics.RecordEvent(ctx, &userID, "project_updated", "")
	return nil
}

func (uc *ProjectUseCase) Delete(ctx context.Context, userID, id int) error {
	if err := uc.repo.DeleteProject(ctx, userID, id); err != nil {
		return err
	}
	uc.analytics.RecordEvent(ctx, &userID, "project_deleted", "")
	return nil
}

func (uc *ProjectUseCase) ToggleFavorite(ctx context.Context, userID, id int) (bool, error) {
	return uc.repo.ToggleFavorite(ctx, userID, id)
}

// Export renders a project's stored analysis in the requested format and
// returns the body plus its content type.
func (uc *ProjectUseCase) Export(ctx context.Context, userID, id int, format ExportFormat) ([]byte, string, error) {
	p, err := uc.repo.GetProject(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	uc.analytics.RecordEvent(ctx, &userID, "project_exported", string(format))

	switch format {
	case ExportMarkdown:
		return []byte(render.ExportMarkdown(p.Title, p.AnalysisResult)), "text/markdown; charset=utf-8", nil
	case ExportHTML:
		return []byte(render.ExportHTML(p.Title, p.AnalysisResult)), "text/html; charset=utf-8", nil
	case ExportJSON, "":
		body := p.AnalysisResult
		if len(body) == 0 {
			body = []byte("{}")
		}
		out, err := json.Marshal(map[string]any{
			"title":       p.Title,
			"description": p.Description,
			"analysis":    json.RawMessage(body),
			"exported_at": time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, "", err
		}
		return out, "application/json; charset=utf-8", nil
	default:
		return nil, "", errors.BadRequest("BAD_FORMAT", "Unsupported export format")
	}
}
