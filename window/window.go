// Package window provides isolated execution contexts over dom documents:
// shared class definitions bound per window, a ledger of outstanding
// asynchronous work with fixpoint completion, cooperative task scheduling,
// timers, and per-origin key-value storage.
package window

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hollowdom/hollowdom/dom"
)

// Options configures a new Window.
type Options struct {
	// URL is the document URL, used for storage origin scoping.
	URL string
	// Registry supplies the shared class definitions. Nil uses a registry
	// with the builtin classes.
	Registry *Registry
	// StorageHub supplies origin-scoped storage. Nil uses a private hub.
	StorageHub *StorageHub
	// Logger receives structured window diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Window is one isolated execution context: a document, a task ledger with a
// cooperative scheduler, timers, storage, and window-scoped bindings of the
// shared class definitions.
type Window struct {
	doc      *dom.Document
	registry *Registry
	ledger   *TaskLedger
	sched    *scheduler
	timers   *timerManager
	logger   *slog.Logger

	local   *Storage
	session *Storage

	mu      sync.Mutex
	bound   map[string]*BoundClass
	closed  bool
	aborted bool
}

// New creates a window with a fresh empty document.
func New(opts Options) *Window {
	doc := dom.NewDocument()
	if opts.URL != "" {
		doc.SetURL(opts.URL)
	}
	return NewWithDocument(doc, opts)
}

// NewWithDocument creates a window over an existing document, e.g. one
// produced by the html parser.
func NewWithDocument(doc *dom.Document, opts Options) *Window {
	registry := opts.Registry
	if registry == nil {
		registry = BuiltinRegistry()
	}
	hub := opts.StorageHub
	if hub == nil {
		hub = NewStorageHub()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if opts.URL != "" && doc.URL() == "about:blank" {
		doc.SetURL(opts.URL)
	}

	ledger := NewTaskLedger()
	origin := OriginOf(doc.URL())

	w := &Window{
		doc:      doc,
		registry: registry,
		ledger:   ledger,
		sched:    newScheduler(),
		timers:   newTimerManager(ledger),
		logger:   logger,
		local:    hub.Local(origin),
		session:  hub.Session(origin),
		bound:    make(map[string]*BoundClass),
	}
	return w
}

// Document returns the window's document.
func (w *Window) Document() *dom.Document {
	return w.doc
}

// Ledger returns the window's async task ledger.
func (w *Window) Ledger() *TaskLedger {
	return w.ledger
}

// Logger returns the window's logger.
func (w *Window) Logger() *slog.Logger {
	return w.logger
}

// LocalStorage returns the window's origin-scoped persistent store.
func (w *Window) LocalStorage() *Storage {
	return w.local
}

// SessionStorage returns the window's origin-scoped session store.
func (w *Window) SessionStorage() *Storage {
	return w.session
}

// Class returns the window-scoped wrapper for a shared class, or nil if no
// such class is registered. Wrappers are memoized per window and released on
// abort or close.
func (w *Window) Class(name string) *BoundClass {
	w.mu.Lock()
	defer w.mu.Unlock()

	if b, ok := w.bound[name]; ok {
		return b
	}
	def := w.registry.Lookup(name)
	if def == nil {
		return nil
	}
	b := &BoundClass{def: def, win: w}
	w.bound[name] = b
	return b
}

// Construct builds an instance of the named shared class under this window.
func (w *Window) Construct(name string, args ...any) (Instance, error) {
	b := w.Class(name)
	if b == nil {
		return nil, dom.ErrNotSupported("unknown class " + name)
	}
	return b.New(args...)
}

// Closed returns true after Close or Abort.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// QueueMicrotask schedules fn to run before the next macrotask. The task is
// tracked in the ledger until it runs.
func (w *Window) QueueMicrotask(fn func()) {
	h := w.ledger.Register("microtask")
	w.sched.queueMicrotask(func() {
		defer w.ledger.Complete(h)
		fn()
	})
}

// QueueMacrotask schedules fn to run after pending microtasks drain.
func (w *Window) QueueMacrotask(fn func()) {
	h := w.ledger.Register("macrotask")
	w.sched.queueMacrotask(func() {
		defer w.ledger.Complete(h)
		fn()
	})
}

// SetTimeout schedules fn once after delay. Returns a timer id for
// ClearTimer.
func (w *Window) SetTimeout(fn func(), delay time.Duration) int {
	return w.timers.setTimeout(fn, delay)
}

// SetInterval schedules fn repeatedly every interval.
func (w *Window) SetInterval(fn func(), interval time.Duration) int {
	return w.timers.setInterval(fn, interval)
}

// ClearTimer cancels a timer created with SetTimeout or SetInterval.
func (w *Window) ClearTimer(id int) {
	w.timers.clearTimer(id)
}

// idle reports whether nothing remains to run: no queued tasks, no timers,
// and an empty ledger.
func (w *Window) idle() bool {
	return w.ledger.Outstanding() == 0 &&
		!w.sched.hasPending() &&
		!w.timers.hasPending()
}

// WaitUntilComplete pumps the window's scheduler until the task ledger
// reaches a fixed point of zero outstanding work. Completing one task may
// schedule another, so emptiness is re-checked after every round. Returns
// early with the context's error if ctx is done first.
func (w *Window) WaitUntilComplete(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.Closed() {
			return nil
		}

		ran := w.sched.runOnce()
		if w.timers.process() {
			ran = true
		}

		if w.idle() {
			return nil
		}
		if ran {
			continue
		}

		// Nothing runnable right now: sleep until a timer comes due or a
		// cross-goroutine completion wakes the scheduler.
		next := w.timers.nextDue()
		var timerCh <-chan time.Time
		if next >= 0 {
			timerCh = time.After(next)
		}
		select {
		case <-w.sched.wakeChan():
		case <-timerCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Abort discards all outstanding work immediately: queued tasks, timers, and
// ledger entries are dropped without running, identity bindings are released,
// and the document's caches are cleared. Idempotent.
func (w *Window) Abort() {
	w.mu.Lock()
	if w.aborted {
		w.mu.Unlock()
		return
	}
	w.aborted = true
	w.closed = true
	w.bound = make(map[string]*BoundClass)
	w.mu.Unlock()

	w.sched.clear()
	w.timers.clear()
	dropped := w.ledger.Outstanding()
	w.ledger.Clear()
	w.doc.ClearCaches()
	w.sched.signal()

	w.logger.Info("window aborted", "url", w.doc.URL(), "dropped_tasks", dropped)
}

// Close waits for outstanding work to complete, then releases the window's
// bindings. Use Abort to discard in-flight work instead of waiting.
func (w *Window) Close(ctx context.Context) error {
	if err := w.WaitUntilComplete(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	w.closed = true
	w.bound = make(map[string]*BoundClass)
	w.mu.Unlock()

	w.logger.Info("window closed", "url", w.doc.URL())
	return nil
}
