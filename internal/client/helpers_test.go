package client

import (
	"fmt"
	"sync"
	"time"
)

// stepClock advances its own time by d on every After call and fires
// immediately, so poll cycles run without real sleeps.
type stepClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *stepClock) elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (c *stepClock) recordedWaits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// blockingClock never fires.
type blockingClock struct{}

func (blockingClock) Now() time.Time                       { return time.Now() }
func (blockingClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

// fakeEnv records every call made by the dashboard.
type fakeEnv struct {
	mu       sync.Mutex
	calls    []string
	rows     []Statistic
	progress []int
	loading  bool
}

func (e *fakeEnv) record(call string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
}

func (e *fakeEnv) ShowLoading() {
	e.mu.Lock()
	e.loading = true
	e.mu.Unlock()
	e.record("show_loading")
}

func (e *fakeEnv) HideLoading() {
	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()
	e.record("hide_loading")
}

func (e *fakeEnv) Reload()               { e.record("reload") }
func (e *fakeEnv) Notify(message string) { e.record("notify:" + message) }

func (e *fakeEnv) RenderStatistics(rows []Statistic) {
	e.mu.Lock()
	e.rows = append([]Statistic(nil), rows...)
	e.mu.Unlock()
	e.record(fmt.Sprintf("render:%d", len(rows)))
}

func (e *fakeEnv) ShowStatisticsPopup() { e.record("popup") }

func (e *fakeEnv) ReportProgress(status TaskStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress = append(e.progress, status.Progress)
}

func (e *fakeEnv) recorded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEnv) count(call string) int {
	n := 0
	for _, c := range e.recorded() {
		if c == call {
			n++
		}
	}
	return n
}
