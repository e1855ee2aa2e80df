package biz

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/saasgenius/saasgenius/internal/cache"
	"github.com/saasgenius/saasgenius/internal/history"
	"github.com/saasgenius/saasgenius/internal/metrics"
	"github.com/saasgenius/saasgenius/internal/tasks"
)

const minDescriptionLength = 10

// Analyzer produces the analysis payload for a description. It never fails,
// degraded analyses are still payloads.
type Analyzer interface {
	Analyze(ctx context.Context, description string) map[string]any
	// Configured reports whether a language model backs the analyzer, as
	// opposed to the keyword fallback.
	Configured() bool
}

// Pinger reports backing-store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ValidateDescription enforces the input rules shared by the sync and async
// analysis paths.
func ValidateDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return errors.BadRequest("EMPTY_DESCRIPTION", "Project description cannot be empty")
	}
	if len(trimmed) < minDescriptionLength {
		return errors.BadRequest("DESCRIPTION_TOO_SHORT", "Project description is too short. Please provide more details.")
	}
	return nil
}

// AnalysisUseCase orchestrates analysis: cache lookup, engine call, project
// persistence, history and metrics.
type AnalysisUseCase struct {
	engine    Analyzer
	projects  ProjectRepo
	analytics AnalyticsRepo
	cache     *cache.Cache
	history   *history.Store
	tasks     *tasks.Manager
	metrics   *metrics.Collector
	log       *log.Helper
}

func NewAnalysisUseCase(
	engine Analyzer,
	projects ProjectRepo,
	analytics AnalyticsRepo,
	c *cache.Cache,
	h *history.Store,
	tm *tasks.Manager,
	mc *metrics.Collector,
	logger log.Logger,
) *AnalysisUseCase {
	return &AnalysisUseCase{
		engine:    engine,
		projects:  projects,
		analytics: analytics,
		cache:     c,
		history:   h,
		tasks:     tm,
		metrics:   mc,
		log:       log.NewHelper(logger),
	}
}

// Analyze runs the full synchronous pipeline and returns the analysis
// payload. A nil user is a guest: the analysis runs, nothing is saved.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, user *User, description string) (map[string]any, error) {
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)

	start := time.Now()
	result := uc.analyzeCached(ctx, description)
	uc.metrics.Inc("analysis.requests")
	uc.metrics.Observe("analysis.duration_seconds", time.Since(start).Seconds())

	title := suggestedTitle(result)
	var userID *int
	if user != nil {
		userID = &user.ID

		// Persistence is best effort: a database outage must not cost the
		// user the analysis they just waited for.
		payload, err := json.Marshal(result)
		if err == nil {
			id, serr := uc.projects.CreateProject(ctx, &Project{
				UserID:         user.ID,
				Title:          title,
				Description:    description,
				AnalysisResult: payload,
			})
			if serr != nil {
				uc.log.Warnf("save analysis for user %d: %v", user.ID, serr)
			} else {
				result["project_id"] = id
			}
		} else {
			uc.log.Warnf("marshal analysis result: %v", err)
		}

		uc.history.Append(user.Username, result)
	}
	uc.analytics.RecordEvent(ctx, userID, "project_analyzed", title)
	return result, nil
}

func (uc *AnalysisUseCase) analyzeCached(ctx context.Context, description string) map[string]any {
	key := cache.Key("analysis", strings.ToLower(description))
	if cached, ok := uc.cache.Get(key); ok {
		if result, ok := cached.(map[string]any); ok {
			uc.metrics.Inc("analysis.cache_hits")
			// Copy so per-request keys like project_id do not leak into the
			// cached entry.
			out := make(map[string]any, len(result))
			for k, v := range result {
				out[k] = v
			}
			return out
		}
	}

	result := uc.engine.Analyze(ctx, description)
	cached := make(map[string]any, len(result))
	for k, v := range result {
		cached[k] = v
	}
	uc.cache.Set(key, cached)
	return result
}

func suggestedTitle(result map[string]any) string {
	if meta, ok := result["analysis_metadata"].(map[string]any); ok {
		if name, ok := meta["suggested_name"].(string); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	if name, ok := result["project_name"].(string); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return "Untitled Project"
}

// AnalyzeAsync queues an analysis and returns the task id immediately.
func (uc *AnalysisUseCase) AnalyzeAsync(ctx context.Context, user *User, description string) (string, error) {
	if err := ValidateDescription(description); err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(description)

	// Capture the user by value: the request context dies with the request,
	// the task runs on the manager's context.
	u := *user
	id, err := uc.tasks.Submit(trimmed, func(taskCtx context.Context) (map[string]any, error) {
		return uc.Analyze(taskCtx, &u, trimmed)
	})
	if err != nil {
		return "", errors.ServiceUnavailable("QUEUE_FULL", "Analysis queue is full, try again later")
	}
	uc.metrics.Inc("analysis.async_submitted")
	return id, nil
}

// TaskStatus returns the snapshot of a background analysis.
func (uc *AnalysisUseCase) TaskStatus(id string) (tasks.Task, error) {
	t, ok := uc.tasks.Get(id)
	if !ok {
		return tasks.Task{}, errors.NotFound("TASK_NOT_FOUND", "Task not found")
	}
	return t, nil
}

// CancelTask cancels a still-pending background analysis.
func (uc *AnalysisUseCase) CancelTask(id string) error {
	if !uc.tasks.Cancel(id) {
		return errors.BadRequest("CANNOT_CANCEL", "Task cannot be cancelled")
	}
	return nil
}

// EngineConfigured reports whether analyses run against a model or the
// keyword fallback.
func (uc *AnalysisUseCase) EngineConfigured() bool {
	return uc.engine.Configured()
}

// TaskStats summarizes the background task registry.
func (uc *AnalysisUseCase) TaskStats() map[string]int {
	return uc.tasks.Stats()
}

// usageEvents are the event types surfaced by the performance endpoint.
var usageEvents = []string{
	"user_registered", "user_login", "demo_login",
	"project_analyzed", "project_updated", "project_deleted", "project_exported",
}

// UsageStats counts recorded analytics events per type.
func (uc *AnalysisUseCase) UsageStats(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(usageEvents))
	for _, et := range usageEvents {
		n, err := uc.analytics.CountEvents(ctx, et)
		if err != nil {
			return nil, err
		}
		out[et] = n
	}
	return out, nil
}

// History returns the user's recent analyses, newest first.
func (uc *AnalysisUseCase) History(user *User) []map[string]any {
	return uc.history.List(user.Username)
}
