package asyncpipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/pipeline"
)

// The worker contract (queueing, correlation, stop-drain) is tested
// directly against the exported Pipeline API using struct literals rather
// than New, since New starts the worker goroutine, which would drain the
// queue and call the inner pipeline while the tests inspect its state.

func tinyImage(t *testing.T) *imageops.Image {
	t.Helper()
	img, err := imageops.NewImage(1, 1)
	require.NoError(t, err)
	return img
}

func newTestPipeline(cfg Config) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		queue:   make(chan task, cfg.QueueDepth),
		results: make(map[TaskID]storedResult),
		pending: make(map[TaskID]bool),
		stopCh:  make(chan struct{}),
		drainCh: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func TestQueueFullReturnsError(t *testing.T) {
	// QueueDepth 1 means the first PushTask is admitted and the second,
	// while the worker hasn't drained it yet, is rejected.
	p := newTestPipeline(Config{QueueDepth: 1, ResultTTL: time.Minute})

	img := tinyImage(t)
	require.NoError(t, p.PushTask(TaskID(1), img, pipeline.TaskConfig{}))

	err := p.PushTask(TaskID(2), img, pipeline.TaskConfig{})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPushTaskRejectsDuplicateID(t *testing.T) {
	p := newTestPipeline(Config{QueueDepth: 4, ResultTTL: time.Minute})

	img := tinyImage(t)
	require.NoError(t, p.PushTask(TaskID(1), img, pipeline.TaskConfig{}))

	err := p.PushTask(TaskID(1), img, pipeline.TaskConfig{})
	assert.ErrorIs(t, err, ErrDuplicateTask)
}

func TestGetResultEmptyNotReady(t *testing.T) {
	p := newTestPipeline(Config{QueueDepth: 4, ResultTTL: time.Minute})

	_, _, ok := p.GetResult()
	assert.False(t, ok)
}

func TestGetResultReturnsAndConsumesOldestFirst(t *testing.T) {
	p := newTestPipeline(Config{QueueDepth: 4, ResultTTL: time.Minute})
	p.results[TaskID(7)] = storedResult{result: TaskResult{Result: pipeline.Result{Stats: pipeline.Stats{LineCount: 3}}}, readyAt: time.Now()}
	p.results[TaskID(2)] = storedResult{result: TaskResult{Result: pipeline.Result{Stats: pipeline.Stats{LineCount: 9}}}, readyAt: time.Now().Add(time.Millisecond)}
	p.order = []TaskID{TaskID(7), TaskID(2)}

	id, res, ok := p.GetResult()
	require.True(t, ok)
	assert.Equal(t, TaskID(7), id)
	assert.Equal(t, 3, res.Result.Stats.LineCount)

	id, res, ok = p.GetResult()
	require.True(t, ok)
	assert.Equal(t, TaskID(2), id)
	assert.Equal(t, 9, res.Result.Stats.LineCount)

	_, _, ok = p.GetResult()
	assert.False(t, ok, "results should be consumed once collected")
}

func TestResultTTLEviction(t *testing.T) {
	p := newTestPipeline(Config{QueueDepth: 4, ResultTTL: time.Millisecond})
	p.results[TaskID(1)] = storedResult{result: TaskResult{}, readyAt: time.Now().Add(-time.Hour)}
	p.order = []TaskID{TaskID(1)}

	time.Sleep(2 * time.Millisecond)
	_, _, ok := p.GetResult()
	assert.False(t, ok, "stale result should have been evicted")
}

func TestWaitForResultContextCancellation(t *testing.T) {
	p := newTestPipeline(Config{QueueDepth: 4, ResultTTL: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.WaitForResult(ctx, TaskID(1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
