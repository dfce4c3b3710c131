package window

import (
	"sync"
)

// task is one queued callback in the scheduler.
type task func()

// scheduler manages the cooperative task queues of one window. Microtasks
// drain completely before the next macrotask runs; each queue preserves FIFO
// order. Callbacks may be enqueued from other goroutines (a response
// arriving), but they only ever execute on the goroutine pumping the
// scheduler, so tree mutation and dispatch stay single-threaded per window.
type scheduler struct {
	mu         sync.Mutex
	microtasks []task
	macrotasks []task
	wake       chan struct{}
}

func newScheduler() *scheduler {
	return &scheduler{
		wake: make(chan struct{}, 1),
	}
}

// queueMicrotask adds a microtask, executed before the next macrotask.
func (s *scheduler) queueMicrotask(t task) {
	s.mu.Lock()
	s.microtasks = append(s.microtasks, t)
	s.mu.Unlock()
	s.signal()
}

// queueMacrotask adds a macrotask, executed after all microtasks drain.
func (s *scheduler) queueMacrotask(t task) {
	s.mu.Lock()
	s.macrotasks = append(s.macrotasks, t)
	s.mu.Unlock()
	s.signal()
}

func (s *scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// runOnce drains all microtasks, then runs one macrotask. Returns true if any
// callback ran.
func (s *scheduler) runOnce() bool {
	ran := false

	for {
		s.mu.Lock()
		if len(s.microtasks) == 0 {
			s.mu.Unlock()
			break
		}
		t := s.microtasks[0]
		s.microtasks = s.microtasks[1:]
		s.mu.Unlock()

		t()
		ran = true
	}

	s.mu.Lock()
	if len(s.macrotasks) > 0 {
		t := s.macrotasks[0]
		s.macrotasks = s.macrotasks[1:]
		s.mu.Unlock()
		t()
		return true
	}
	s.mu.Unlock()

	return ran
}

// hasPending returns true if any queued task has not run yet.
func (s *scheduler) hasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.microtasks) > 0 || len(s.macrotasks) > 0
}

// clear discards all queued tasks.
func (s *scheduler) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.microtasks = nil
	s.macrotasks = nil
}

// wakeChan returns the channel signaled whenever a task is enqueued, so the
// pumping goroutine can sleep between rounds without missing cross-goroutine
// completions.
func (s *scheduler) wakeChan() <-chan struct{} {
	return s.wake
}
