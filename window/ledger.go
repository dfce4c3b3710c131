package window

import (
	"sync"
)

// TaskHandle identifies one outstanding asynchronous work item registered
// with a TaskLedger.
type TaskHandle struct {
	id   uint64
	kind string
}

// Kind returns the label the task was registered with, e.g. "timer" or
// "fetch".
func (h *TaskHandle) Kind() string {
	return h.kind
}

// TaskLedger tracks the asynchronous work items of one window: timers,
// in-flight requests, pending media operations. A window is only complete
// when its ledger is empty and stays empty, since completing one task may
// schedule another.
type TaskLedger struct {
	mu          sync.Mutex
	nextID      uint64
	outstanding map[uint64]*TaskHandle
}

// NewTaskLedger creates an empty ledger.
func NewTaskLedger() *TaskLedger {
	return &TaskLedger{
		outstanding: make(map[uint64]*TaskHandle),
	}
}

// Register adds a new outstanding work item and returns its handle.
func (l *TaskLedger) Register(kind string) *TaskHandle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	h := &TaskHandle{id: l.nextID, kind: kind}
	l.outstanding[h.id] = h
	return h
}

// Complete removes an outstanding work item. Completing an unknown or
// already-completed handle is a no-op.
func (l *TaskLedger) Complete(h *TaskHandle) {
	if h == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.outstanding, h.id)
}

// Outstanding returns the number of registered, uncompleted work items.
func (l *TaskLedger) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.outstanding)
}

// Clear discards every outstanding work item without waiting for completion.
func (l *TaskLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outstanding = make(map[uint64]*TaskHandle)
}
