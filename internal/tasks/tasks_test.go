package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, workers, maxQueue int) *Manager {
	t.Helper()
	m := NewManager(workers, maxQueue, log.DefaultLogger)
	t.Cleanup(m.Shutdown)
	return m
}

func waitFor(t *testing.T, m *Manager, id string, want Status) Task {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		task, ok := m.Get(id)
		require.True(t, ok)
		if task.Status == want {
			return task
		}
		select {
		case <-deadline:
			t.Fatalf("task %s never reached %s, stuck at %s", id, want, task.Status)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubmitAndComplete(t *testing.T) {
	m := newManager(t, 2, 10)

	id, err := m.Submit("analyze something", func(ctx context.Context) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})
	require.NoError(t, err)

	task := waitFor(t, m, id, StatusCompleted)
	assert.Equal(t, float64(100), task.Progress)
	assert.Equal(t, true, task.Result["ok"])
	assert.NotNil(t, task.CompletedAt)
}

func TestFailedTaskKeepsError(t *testing.T) {
	m := newManager(t, 1, 10)

	id, err := m.Submit("doomed", func(ctx context.Context) (map[string]any, error) {
		return nil, errors.New("model unavailable")
	})
	require.NoError(t, err)

	task := waitFor(t, m, id, StatusFailed)
	assert.Equal(t, "model unavailable", task.Error)
}

func TestCancelPendingOnly(t *testing.T) {
	block := make(chan struct{})
	m := newManager(t, 1, 10)

	// Occupy the single worker so later tasks stay pending.
	busy, err := m.Submit("busy", func(ctx context.Context) (map[string]any, error) {
		<-block
		return nil, nil
	})
	require.NoError(t, err)
	waitFor(t, m, busy, StatusProcessing)

	pending, err := m.Submit("waiting", func(ctx context.Context) (map[string]any, error) {
		return nil, nil
	})
	require.NoError(t, err)

	assert.True(t, m.Cancel(pending))
	task, _ := m.Get(pending)
	assert.Equal(t, StatusCancelled, task.Status)

	assert.False(t, m.Cancel(busy))
	assert.False(t, m.Cancel("no-such-id"))

	close(block)
}

func TestQueueFull(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	m := newManager(t, 1, 2)

	blocked := func(ctx context.Context) (map[string]any, error) {
		<-block
		return nil, nil
	}
	_, err := m.Submit("a", blocked)
	require.NoError(t, err)
	_, err = m.Submit("b", blocked)
	require.NoError(t, err)

	_, err = m.Submit("c", blocked)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestStats(t *testing.T) {
	m := newManager(t, 2, 10)
	id, err := m.Submit("x", func(ctx context.Context) (map[string]any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	waitFor(t, m, id, StatusCompleted)

	stats := m.Stats()
	assert.Equal(t, 1, stats["total"])
	assert.Equal(t, 1, stats["completed"])
}

func TestSweepRemovesOldFinishedTasks(t *testing.T) {
	m := newManager(t, 1, 10)
	id, err := m.Submit("old", func(ctx context.Context) (map[string]any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	waitFor(t, m, id, StatusCompleted)

	m.mu.Lock()
	m.tasks[id].CreatedAt = time.Now().Add(-48 * time.Hour)
	m.mu.Unlock()

	m.sweep()
	_, ok := m.Get(id)
	assert.False(t, ok)
}
