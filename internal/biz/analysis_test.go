package biz

import (
	"context"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasgenius/saasgenius/internal/cache"
	"github.com/saasgenius/saasgenius/internal/history"
	"github.com/saasgenius/saasgenius/internal/metrics"
	"github.com/saasgenius/saasgenius/internal/tasks"
)

type stubEngine struct {
	calls int
}

func (e *stubEngine) Analyze(ctx context.Context, description string) map[string]any {
	e.calls++
	return map[string]any{
		"project_name":      "StubApp",
		"executive_summary": "A summary.",
		"analysis_metadata": map[string]any{
			"suggested_name":  "StubApp Pro",
			"analysis_source": "fallback",
		},
	}
}

func (e *stubEngine) Configured() bool { return true }

type memProjectRepo struct {
	nextID   int
	projects map[int]*Project
	failSave bool
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{nextID: 1, projects: map[int]*Project{}}
}

func (r *memProjectRepo) CreateProject(ctx context.Context, p *Project) (int, error) {
	if r.failSave {
		return 0, assert.AnError
	}
	id := r.nextID
	r.nextID++
	cp := *p
	cp.ID = id
	r.projects[id] = &cp
	return id, nil
}

func (r *memProjectRepo) GetProject(ctx context.Context, userID, id int) (*Project, error) {
	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return nil, assert.AnError
	}
	return p, nil
}

func (r *memProjectRepo) ListProjects(ctx context.Context, userID, page, pageSize int) ([]*Project, int, error) {
	return nil, 0, nil
}

func (r *memProjectRepo) UpdateProject(ctx context.Context, userID, id int, fields map[string]any) error {
	return nil
}

func (r *memProjectRepo) DeleteProject(ctx context.Context, userID, id int) error { return nil }

func (r *memProjectRepo) ToggleFavorite(ctx context.Context, userID, id int) (bool, error) {
	return false, nil
}

type memAnalytics struct{ events []string }

func (r *memAnalytics) RecordEvent(ctx context.Context, userID *int, eventType, eventData string) {
	r.events = append(r.events, eventType)
}

func (r *memAnalytics) CountEvents(ctx context.Context, eventType string) (int, error) {
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n, nil
}

func newTestUseCase(t *testing.T, engine Analyzer, repo ProjectRepo) *AnalysisUseCase {
	t.Helper()
	logger := log.DefaultLogger
	tm := tasks.NewManager(2, 10, logger)
	t.Cleanup(tm.Shutdown)
	return NewAnalysisUseCase(
		engine,
		repo,
		&memAnalytics{},
		cache.New(10, time.Minute),
		history.NewStore(t.TempDir(), logger),
		tm,
		metrics.NewCollector(),
		logger,
	)
}

func TestAnalyzeValidation(t *testing.T) {
	uc := newTestUseCase(t, &stubEngine{}, newMemProjectRepo())
	user := &User{ID: 1, Username: "alice"}

	_, err := uc.Analyze(context.Background(), user, "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Project description cannot be empty")

	_, err = uc.Analyze(context.Background(), user, "too short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Project description is too short. Please provide more details.")
}

func TestAnalyzeSavesProjectWithSuggestedTitle(t *testing.T) {
	repo := newMemProjectRepo()
	uc := newTestUseCase(t, &stubEngine{}, repo)
	user := &User{ID: 1, Username: "alice"}

	result, err := uc.Analyze(context.Background(), user, "An invoicing platform for freelancers")
	require.NoError(t, err)

	id, ok := result["project_id"].(int)
	require.True(t, ok)
	saved := repo.projects[id]
	require.NotNil(t, saved)
	assert.Equal(t, "StubApp Pro", saved.Title)
	assert.Equal(t, 1, saved.UserID)
	assert.NotEmpty(t, saved.AnalysisResult)
}

func TestAnalyzeSurvivesSaveFailure(t *testing.T) {
	repo := newMemProjectRepo()
	repo.failSave = true
	uc := newTestUseCase(t, &stubEngine{}, repo)

	result, err := uc.Analyze(context.Background(), &User{ID: 1, Username: "alice"}, "An invoicing platform for freelancers")
	require.NoError(t, err)
	assert.Equal(t, "StubApp", result["project_name"])
	assert.NotContains(t, result, "project_id")
}

func TestUsageStats(t *testing.T) {
	uc := newTestUseCase(t, &stubEngine{}, newMemProjectRepo())
	user := &User{ID: 1, Username: "alice"}

	_, err := uc.Analyze(context.Background(), user, "An invoicing platform for freelancers")
	require.NoError(t, err)

	stats, err := uc.UsageStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats["project_analyzed"])
	assert.Equal(t, 0, stats["user_login"])
}

func TestAnalyzeGuestSkipsPersistence(t *testing.T) {
	repo := newMemProjectRepo()
	uc := newTestUseCase(t, &stubEngine{}, repo)

	result, err := uc.Analyze(context.Background(), nil, "An invoicing platform for freelancers")
	require.NoError(t, err)
	assert.Equal(t, "StubApp", result["project_name"])
	assert.NotContains(t, result, "project_id")
	assert.Empty(t, repo.projects)
}

func TestAnalyzeUsesCache(t *testing.T) {
	engine := &stubEngine{}
	uc := newTestUseCase(t, engine, newMemProjectRepo())
	user := &User{ID: 1, Username: "alice"}

	_, err := uc.Analyze(context.Background(), user, "An invoicing platform for freelancers")
	require.NoError(t, err)
	_, err = uc.Analyze(context.Background(), user, "An invoicing platform for freelancers")
	require.NoError(t, err)

	assert.Equal(t, 1, engine.calls)
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	uc := newTestUseCase(t, &stubEngine{}, newMemProjectRepo())
	user := &User{ID: 1, Username: "alice"}

	_, err := uc.Analyze(context.Background(), user, "An invoicing platform for freelancers")
	require.NoError(t, err)

	entries := uc.History(user)
	require.Len(t, entries, 1)
	assert.Equal(t, "StubApp", entries[0]["project_name"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestSuggestedTitleFallbacks(t *testing.T) {
	assert.Equal(t, "Untitled Project", suggestedTitle(map[string]any{}))
	assert.Equal(t, "X", suggestedTitle(map[string]any{"project_name": "X"}))
	assert.Equal(t, "Y", suggestedTitle(map[string]any{
		"project_name":      "X",
		"analysis_metadata": map[string]any{"suggested_name": "Y"},
	}))
}

func TestAnalyzeAsyncLifecycle(t *testing.T) {
	uc := newTestUseCase(t, &stubEngine{}, newMemProjectRepo())
	user := &User{ID: 1, Username: "alice"}

	id, err := uc.AnalyzeAsync(context.Background(), user, "An invoicing platform for freelancers")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	deadline := time.After(2 * time.Second)
	for {
		task, err := uc.TaskStatus(id)
		require.NoError(t, err)
		if task.Status == tasks.StatusCompleted {
			assert.Equal(t, "StubApp", task.Result["project_name"])
			break
		}
		select {
		case <-deadline:
			t.Fatalf("task never completed, status %s", task.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	_, err = uc.TaskStatus("no-such-task")
	assert.Error(t, err)
}
