package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Status of a background analysis task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// ErrQueueFull is returned when the task registry is at capacity.
var ErrQueueFull = errors.New("task queue is full")

// Runner performs the actual analysis for a submitted task.
type Runner func(ctx context.Context) (map[string]any, error)

// Task is a snapshot of one background analysis.
type Task struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Progress    float64        `json:"progress"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

type job struct {
	id  string
	run Runner
}

// Manager runs analyses on a fixed worker pool and keeps task state for
// polling. Finished tasks are swept after maxTaskAge.
type Manager struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	queue    chan job
	maxQueue int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *log.Helper

	maxTaskAge    time.Duration
	sweepInterval time.Duration
}

func NewManager(workers, maxQueue int, logger log.Logger) *Manager {
	if workers <= 0 {
		workers = 4
	}
	if maxQueue <= 0 {
		maxQueue = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		tasks:         make(map[string]*Task),
		queue:         make(chan job, maxQueue),
		maxQueue:      maxQueue,
		ctx:           ctx,
		cancel:        cancel,
		log:           log.NewHelper(logger),
		maxTaskAge:    24 * time.Hour,
		sweepInterval: time.Hour,
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	m.wg.Add(1)
	go m.sweeper()
	return m
}

// Submit queues a new task and returns its id.
func (m *Manager) Submit(description string, run Runner) (string, error) {
	m.mu.Lock()
	if len(m.tasks) >= m.maxQueue {
		m.mu.Unlock()
		return "", ErrQueueFull
	}
	id := uuid.NewString()
	m.tasks[id] = &Task{
		ID:          id,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	m.mu.Unlock()

	select {
	case m.queue <- job{id: id, run: run}:
		return id, nil
	default:
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Get returns a copy of the task's current state.
func (m *Manager) Get(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Cancel marks a still-pending task as cancelled. Running tasks are not
// interrupted.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.Status != StatusPending {
		return false
	}
	now := time.Now()
	t.Status = StatusCancelled
	t.CompletedAt = &now
	return true
}

// Stats summarizes the registry for the health endpoint.
func (m *Manager) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]int{"total": len(m.tasks)}
	for _, t := range m.tasks {
		out[string(t.Status)]++
	}
	return out
}

func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case j := <-m.queue:
			m.execute(j)
		}
	}
}

func (m *Manager) execute(j job) {
	m.mu.Lock()
	t, ok := m.tasks[j.id]
	if !ok || t.Status != StatusPending {
		m.mu.Unlock()
		return
	}
	now := time.Now()
	t.Status = StatusProcessing
	t.StartedAt = &now
	t.Progress = 10
	m.mu.Unlock()

	result, err := j.run(m.ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok = m.tasks[j.id]
	if !ok {
		return
	}
	done := time.Now()
	t.CompletedAt = &done
	if err != nil {
		t.Status = StatusFailed
		t.Error = err.Error()
		m.log.Errorf("task %s failed: %v", j.id, err)
		return
	}
	t.Status = StatusCompleted
	t.Result = result
	t.Progress = 100
}

func (m *Manager) sweeper() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.maxTaskAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, t := range m.tasks {
		switch t.Status {
		case StatusCompleted, StatusFailed, StatusCancelled:
			if t.CreatedAt.Before(cutoff) {
				delete(m.tasks, id)
				removed++
			}
		}
	}
	if removed > 0 {
		m.log.Infof("swept %d finished tasks", removed)
	}
}
