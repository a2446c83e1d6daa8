package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_scraper/internal/domain"
)

type recordingRunner struct {
	mu        sync.Mutex
	modes     []domain.Mode
	deadlines []bool
	calls     chan struct{}
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{calls: make(chan struct{}, 16)}
}

func (r *recordingRunner) Run(ctx context.Context, mode domain.Mode) *domain.CycleStats {
	_, hasDeadline := ctx.Deadline()

	r.mu.Lock()
	r.modes = append(r.modes, mode)
	r.deadlines = append(r.deadlines, hasDeadline)
	r.mu.Unlock()

	r.calls <- struct{}{}
	return &domain.CycleStats{Mode: mode}
}

func (r *recordingRunner) snapshot() ([]domain.Mode, []bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Mode(nil), r.modes...), append([]bool(nil), r.deadlines...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitCall(t *testing.T, calls <-chan struct{}) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	runner := newRecordingRunner()
	sched := NewScheduler(runner, 20*time.Millisecond, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	waitCall(t, runner.calls)
	waitCall(t, runner.calls)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	modes, deadlines := runner.snapshot()
	require.GreaterOrEqual(t, len(modes), 2)
	for i := range modes {
		assert.Equal(t, domain.ModeScheduled, modes[i])
		assert.True(t, deadlines[i], "each cycle runs under a timeout")
	}
}

func TestScheduler_StopsBeforeFirstTick(t *testing.T) {
	runner := newRecordingRunner()
	sched := NewScheduler(runner, time.Hour, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	waitCall(t, runner.calls)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	modes, _ := runner.snapshot()
	assert.Len(t, modes, 1)
}
