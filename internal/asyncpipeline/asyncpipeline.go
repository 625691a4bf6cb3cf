// Package asyncpipeline wraps a synchronous pipeline.Pipeline with the
// task/result contract external callers use when they cannot block waiting
// on inference: push_task enqueues work under a caller-chosen task_id, a
// single dedicated worker drains the queue, and get_result/WaitForResult
// hand a completed pipeline.Result back by that same task_id. task_id is
// opaque to the pipeline; it is never inspected or generated here, only
// echoed back to whichever caller submitted it.
//
// The worker and the result store are independent: PushTask never blocks
// on GetResult, and GetResult never blocks on the worker, except in
// WaitForResult which explicitly waits.
package asyncpipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/pipeline"
)

// ErrQueueFull is returned by PushTask when the bounded input queue has no
// room for another task.
var ErrQueueFull = errors.New("asyncpipeline: input queue is full")

// ErrDuplicateTask is returned by PushTask when taskID is already in
// flight or has an unconsumed result waiting.
var ErrDuplicateTask = errors.New("asyncpipeline: task id already in use")

// ErrUnknownTask is returned by WaitForResult once the worker has exited
// and a task_id has no stored result: it was never submitted, was pushed
// after the worker drained, was already collected, or has aged out of the
// result map.
var ErrUnknownTask = errors.New("asyncpipeline: unknown or not-yet-ready task id")

// TaskID correlates a PushTask call with its eventual result. It is chosen
// by the caller and is otherwise opaque to the pipeline.
type TaskID int64

// TaskResult pairs a completed Result with any processing error.
type TaskResult struct {
	Result pipeline.Result
	Err    error
}

type task struct {
	id      TaskID
	img     *imageops.Image
	taskCfg pipeline.TaskConfig
}

type storedResult struct {
	result  TaskResult
	readyAt time.Time
}

// Config controls queue depth and result retention.
type Config struct {
	// QueueDepth bounds the number of tasks PushTask may have in flight
	// (queued + in the single worker) before it starts returning
	// ErrQueueFull.
	QueueDepth int
	// ResultTTL is how long a completed result stays in the correlation
	// map before GetResult/WaitForResult treat it as gone. Zero disables
	// eviction.
	ResultTTL time.Duration
}

// DefaultConfig returns a modest queue depth with a five-minute result
// retention window.
func DefaultConfig() Config {
	return Config{QueueDepth: 32, ResultTTL: 5 * time.Minute}
}

// Pipeline is the async task/result wrapper around a synchronous
// pipeline.Pipeline.
type Pipeline struct {
	inner *pipeline.Pipeline
	cfg   Config

	queue chan task

	mu       sync.Mutex
	cond     *sync.Cond
	results  map[TaskID]storedResult
	order    []TaskID // ready task ids, oldest first, popped by GetResult
	pending  map[TaskID]bool
	inFlight int // queued + currently processing, bounds admission independent of len(queue)

	stopOnce sync.Once
	stopCh   chan struct{}
	drainCh  chan struct{}
	wg       sync.WaitGroup
}

// New starts the single worker goroutine and returns a ready Pipeline.
func New(inner *pipeline.Pipeline, cfg Config) *Pipeline {
	p := &Pipeline{
		inner:   inner,
		cfg:     cfg,
		queue:   make(chan task, cfg.QueueDepth),
		results: make(map[TaskID]storedResult),
		pending: make(map[TaskID]bool),
		stopCh:  make(chan struct{}),
		drainCh: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(1)
	go p.run()
	return p
}

// PushTask enqueues img under the caller-chosen taskID for processing,
// applying taskCfg as a per-task override of the inner pipeline's
// defaults. It never blocks: if the queue is full it returns ErrQueueFull
// rather than waiting for room. It is an error to reuse a taskID that is
// still queued, processing, or has a result awaiting collection.
func (p *Pipeline) PushTask(taskID TaskID, img *imageops.Image, taskCfg pipeline.TaskConfig) error {
	p.mu.Lock()
	if p.pending[taskID] {
		p.mu.Unlock()
		return ErrDuplicateTask
	}
	if _, ok := p.results[taskID]; ok {
		p.mu.Unlock()
		return ErrDuplicateTask
	}
	if p.inFlight >= p.cfg.QueueDepth {
		p.mu.Unlock()
		return ErrQueueFull
	}
	p.pending[taskID] = true
	p.inFlight++
	p.mu.Unlock()

	select {
	case p.queue <- task{id: taskID, img: img, taskCfg: taskCfg}:
		return nil
	default:
		p.mu.Lock()
		delete(p.pending, taskID)
		p.inFlight--
		p.mu.Unlock()
		return ErrQueueFull
	}
}

// GetResult is a non-blocking poll for whichever task finished earliest
// among those not yet collected. ok is false if nothing is ready. The
// returned id is the caller's own taskID from the matching PushTask call,
// letting one consumer collect results from many producers without
// knowing any task's id in advance.
func (p *Pipeline) GetResult() (id TaskID, result TaskResult, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evictLocked()
	for len(p.order) > 0 {
		next := p.order[0]
		p.order = p.order[1:]
		stored, found := p.results[next]
		if !found {
			continue // consumed by WaitForResult or evicted already
		}
		delete(p.results, next)
		return next, stored.result, true
	}
	return 0, TaskResult{}, false
}

// WaitForResult blocks until id's result is ready, ctx is done, or the
// pipeline is stopped with no hope of id ever completing (it was never
// admitted, or the worker drained without processing it), in which case it
// returns ErrUnknownTask.
func (p *Pipeline) WaitForResult(ctx context.Context, id TaskID) (TaskResult, error) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-p.drainCh:
		case <-done:
			return
		}
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	}()
	defer close(done)

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		p.evictLocked()
		if stored, ok := p.results[id]; ok {
			delete(p.results, id)
			p.removeFromOrderLocked(id)
			return stored.result, nil
		}
		if ctx.Err() != nil {
			return TaskResult{}, ctx.Err()
		}
		select {
		case <-p.drainCh:
			return TaskResult{}, ErrUnknownTask
		default:
		}
		p.cond.Wait()
	}
}

func (p *Pipeline) removeFromOrderLocked(id TaskID) {
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

// evictLocked drops results older than cfg.ResultTTL. Must be called with
// p.mu held.
func (p *Pipeline) evictLocked() {
	if p.cfg.ResultTTL <= 0 {
		return
	}
	cutoff := time.Now().Add(-p.cfg.ResultTTL)
	for id, r := range p.results {
		if r.readyAt.Before(cutoff) {
			delete(p.results, id)
		}
	}
	live := p.order[:0]
	for _, id := range p.order {
		if _, ok := p.results[id]; ok {
			live = append(live, id)
		}
	}
	p.order = live
}

func (p *Pipeline) run() {
	defer p.wg.Done()
	for {
		select {
		case t := <-p.queue:
			p.process(t)
		case <-p.stopCh:
			p.drainRemaining()
			return
		}
	}
}

// drainRemaining finishes every task already queued before the worker
// exits, implementing the "drain pending, finish in-flight" stop policy.
func (p *Pipeline) drainRemaining() {
	for {
		select {
		case t := <-p.queue:
			p.process(t)
		default:
			close(p.drainCh)
			return
		}
	}
}

func (p *Pipeline) process(t task) {
	result, err := p.inner.Process(t.img, t.taskCfg)
	p.mu.Lock()
	delete(p.pending, t.id)
	p.inFlight--
	p.results[t.id] = storedResult{result: TaskResult{Result: result, Err: err}, readyAt: time.Now()}
	p.order = append(p.order, t.id)
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Stop signals the worker to stop accepting new tasks from the queue after
// draining whatever is already queued, then blocks until it has exited.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	<-p.drainCh
	p.wg.Wait()
}

// PendingCount reports tasks queued or processing, for diagnostics.
func (p *Pipeline) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}
