package window

import (
	"context"
	"testing"
	"time"
)

func TestTaskLedger_RegisterComplete(t *testing.T) {
	ledger := NewTaskLedger()

	if ledger.Outstanding() != 0 {
		t.Fatal("Fresh ledger should be empty")
	}

	h1 := ledger.Register("timer")
	h2 := ledger.Register("fetch")
	if ledger.Outstanding() != 2 {
		t.Errorf("Expected 2 outstanding, got %d", ledger.Outstanding())
	}
	if h1.Kind() != "timer" || h2.Kind() != "fetch" {
		t.Error("Handle kinds should round-trip")
	}

	ledger.Complete(h1)
	if ledger.Outstanding() != 1 {
		t.Errorf("Expected 1 outstanding, got %d", ledger.Outstanding())
	}

	// Double completion and nil handles are no-ops
	ledger.Complete(h1)
	ledger.Complete(nil)
	if ledger.Outstanding() != 1 {
		t.Errorf("Expected 1 outstanding, got %d", ledger.Outstanding())
	}

	ledger.Clear()
	if ledger.Outstanding() != 0 {
		t.Error("Clear should drop all entries")
	}
}

func TestWaitUntilComplete_EmptyWindow(t *testing.T) {
	win := New(Options{})
	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Errorf("Idle window should complete immediately: %v", err)
	}
}

func TestWaitUntilComplete_TaskSchedulesTask(t *testing.T) {
	win := New(Options{})

	var order []string
	win.QueueMacrotask(func() {
		order = append(order, "outer")
		win.QueueMicrotask(func() {
			order = append(order, "inner-micro")
			win.QueueMacrotask(func() {
				order = append(order, "inner-macro")
			})
		})
	})

	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"outer", "inner-micro", "inner-macro"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
	if win.Ledger().Outstanding() != 0 {
		t.Error("Ledger should be empty at the fixed point")
	}
}

func TestWaitUntilComplete_MicrotasksBeforeMacrotasks(t *testing.T) {
	win := New(Options{})

	var order []string
	win.QueueMacrotask(func() { order = append(order, "macro") })
	win.QueueMicrotask(func() { order = append(order, "micro") })

	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "micro" || order[1] != "macro" {
		t.Errorf("Microtasks should drain first, got %v", order)
	}
}

func TestWaitUntilComplete_Timers(t *testing.T) {
	win := New(Options{})

	fired := false
	win.SetTimeout(func() { fired = true }, 10*time.Millisecond)

	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Error("Timeout should fire before completion")
	}
}

func TestWaitUntilComplete_ClearedTimer(t *testing.T) {
	win := New(Options{})

	fired := false
	id := win.SetTimeout(func() { fired = true }, 10*time.Millisecond)
	win.ClearTimer(id)

	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Error("Cleared timer should not fire")
	}
	if win.Ledger().Outstanding() != 0 {
		t.Error("Cleared timer should release its ledger entry")
	}
}

func TestWaitUntilComplete_IntervalClearedFromCallback(t *testing.T) {
	win := New(Options{})

	ticks := 0
	var id int
	id = win.SetInterval(func() {
		ticks++
		if ticks == 3 {
			win.ClearTimer(id)
		}
	}, time.Millisecond)

	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ticks != 3 {
		t.Errorf("Expected 3 ticks, got %d", ticks)
	}
}

func TestWaitUntilComplete_ContextTimeout(t *testing.T) {
	win := New(Options{})

	// An interval that never clears keeps the ledger from reaching a fixed
	// point, so only the context ends the wait.
	win.SetInterval(func() {}, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := win.WaitUntilComplete(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected deadline error, got %v", err)
	}
}

func TestWaitUntilComplete_CrossGoroutineCompletion(t *testing.T) {
	win := New(Options{})

	done := false
	h := win.Ledger().Register("external")
	go func() {
		time.Sleep(10 * time.Millisecond)
		win.QueueMacrotask(func() { done = true })
		win.Ledger().Complete(h)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := win.WaitUntilComplete(ctx); err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("Work queued from another goroutine should run before completion")
	}
}

func TestAbort_DropsOutstandingWork(t *testing.T) {
	win := New(Options{})

	ran := false
	win.QueueMacrotask(func() { ran = true })
	win.SetTimeout(func() { ran = true }, time.Millisecond)
	win.SetInterval(func() { ran = true }, time.Millisecond)

	if win.Ledger().Outstanding() == 0 {
		t.Fatal("Setup should leave outstanding work")
	}

	win.Abort()

	if ran {
		t.Error("Aborted work must not run")
	}
	if win.Ledger().Outstanding() != 0 {
		t.Error("Abort should empty the ledger")
	}
	if !win.Closed() {
		t.Error("Abort should close the window")
	}
	if err := win.WaitUntilComplete(context.Background()); err != nil {
		t.Errorf("Waiting on an aborted window should return immediately: %v", err)
	}
}

func TestAbort_Idempotent(t *testing.T) {
	win := New(Options{})
	win.Abort()
	win.Abort()
	win.Abort()
	if !win.Closed() {
		t.Error("Window should stay closed")
	}
}

func TestClose_WaitsForWork(t *testing.T) {
	win := New(Options{})

	ran := false
	win.QueueMacrotask(func() { ran = true })

	if err := win.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("Close should run queued work before closing")
	}
	if !win.Closed() {
		t.Error("Window should be closed")
	}
}
