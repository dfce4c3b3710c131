package window

import (
	"sync"
	"time"
)

// timer is one scheduled callback, one-shot or repeating.
type timer struct {
	id       int
	callback func()
	dueTime  time.Time
	interval time.Duration // 0 for one-shot
	cleared  bool
	handle   *TaskHandle
}

// timerManager manages a window's timers. Every live timer holds a ledger
// entry, so WaitUntilComplete does not return while a timer is pending.
type timerManager struct {
	mu     sync.Mutex
	timers map[int]*timer
	nextID int
	ledger *TaskLedger
}

func newTimerManager(ledger *TaskLedger) *timerManager {
	return &timerManager{
		timers: make(map[int]*timer),
		nextID: 1,
		ledger: ledger,
	}
}

// setTimeout schedules a one-shot callback after delay.
func (tm *timerManager) setTimeout(callback func(), delay time.Duration) int {
	return tm.schedule(callback, delay, 0)
}

// setInterval schedules a repeating callback every interval.
func (tm *timerManager) setInterval(callback func(), interval time.Duration) int {
	return tm.schedule(callback, interval, interval)
}

func (tm *timerManager) schedule(callback func(), delay, interval time.Duration) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := tm.nextID
	tm.nextID++

	tm.timers[id] = &timer{
		id:       id,
		callback: callback,
		dueTime:  time.Now().Add(delay),
		interval: interval,
		handle:   tm.ledger.Register("timer"),
	}
	return id
}

// clearTimer cancels a timer and releases its ledger entry. Unknown ids are
// ignored.
func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, ok := tm.timers[id]; ok {
		t.cleared = true
		tm.ledger.Complete(t.handle)
		delete(tm.timers, id)
	}
}

// process runs every due timer. One-shot timers complete their ledger entry;
// interval timers reschedule and keep it.
func (tm *timerManager) process() bool {
	tm.mu.Lock()
	now := time.Now()
	var due []*timer
	for _, t := range tm.timers {
		if !t.cleared && !t.dueTime.After(now) {
			due = append(due, t)
		}
	}
	tm.mu.Unlock()

	for _, t := range due {
		if t.cleared {
			continue
		}

		t.callback()

		tm.mu.Lock()
		if t.interval > 0 && !t.cleared {
			t.dueTime = time.Now().Add(t.interval)
		} else if !t.cleared {
			tm.ledger.Complete(t.handle)
			delete(tm.timers, t.id)
		}
		tm.mu.Unlock()
	}

	return len(due) > 0
}

// hasPending returns true if any timer is scheduled.
func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}

// nextDue returns the wait until the earliest timer fires: 0 when a timer is
// already due, negative when no timers are pending.
func (tm *timerManager) nextDue() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.timers) == 0 {
		return -1
	}

	now := time.Now()
	min := time.Duration(-1)
	for _, t := range tm.timers {
		d := t.dueTime.Sub(now)
		if d <= 0 {
			return 0
		}
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}

// clear cancels every timer and releases the ledger entries.
func (tm *timerManager) clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for id, t := range tm.timers {
		t.cleared = true
		tm.ledger.Complete(t.handle)
		delete(tm.timers, id)
	}
}
