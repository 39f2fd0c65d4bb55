// Package scheduler runs deferred callbacks that can be cancelled individually
// or all at once when the process shuts down.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned when scheduling on a scheduler that has been shut down.
var ErrStopped = errors.New("scheduler stopped")

// Scheduler owns a set of pending deferred callbacks.
type Scheduler struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*Task
	stopped bool

	// ctx is passed to callbacks and cancelled once Shutdown gives up waiting.
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// Task is a handle to a single scheduled callback.
type Task struct {
	id    uint64
	s     *Scheduler
	timer *time.Timer
}

// New creates a new Scheduler.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		pending: make(map[uint64]*Task),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Schedule runs fn once after delay unless the task is cancelled first.
func (s *Scheduler) Schedule(delay time.Duration, fn func(ctx context.Context)) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrStopped
	}

	s.nextID++
	task := &Task{id: s.nextID, s: s}
	s.pending[task.id] = task
	// Holding mu here keeps the callback from observing a half-built task.
	task.timer = time.AfterFunc(delay, func() { s.run(task, fn) })

	return task, nil
}

func (s *Scheduler) run(task *Task, fn func(ctx context.Context)) {
	s.mu.Lock()
	if _, ok := s.pending[task.id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, task.id)
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	fn(s.ctx)
}

// Cancel prevents the task from running. Returns false if it already ran or was cancelled.
func (t *Task) Cancel() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.pending[t.id]; !ok {
		return false
	}
	delete(t.s.pending, t.id)
	t.timer.Stop()
	return true
}

// Pending returns the number of callbacks that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown cancels every pending callback and waits for running ones to return.
// If ctx expires first, running callbacks see their context cancelled.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for id, task := range s.pending {
		task.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}
