package rate_limiter

import (
	"strconv"
	"sync"
	"time"
)

// StatusView is the slice of the form UI the countdown drives: a status
// line and the submit control's enabled state.
type StatusView interface {
	SetStatus(msg string)
	SetSubmitEnabled(enabled bool)
}

type nopView struct{}

func (nopView) SetStatus(string)      {}
func (nopView) SetSubmitEnabled(bool) {}

// TimerHandle identifies one scheduled repeating callback. Stop is
// idempotent; a stopped callback never fires again.
type TimerHandle interface {
	Stop()
}

// Scheduler schedules a repeating callback. The default implementation
// drives the callback from a time.Ticker goroutine; tests substitute a
// manual one and fire ticks themselves.
type Scheduler interface {
	Every(interval time.Duration, fn func()) TimerHandle
}

type tickerScheduler struct{}

type tickerHandle struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}

func (tickerScheduler) Every(interval time.Duration, fn func()) TimerHandle {
	h := &tickerHandle{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-h.ticker.C:
				fn()
			case <-h.done:
				return
			}
		}
	}()
	return h
}

// countdown renders the time left until a denied client may submit again.
// Two states, idle and counting, with at most one live timer: starting a
// new session always cancels the previous one first, and reaching zero
// stops the session for good.
type countdown struct {
	mu       sync.Mutex
	view     StatusView
	sched    Scheduler
	now      func() time.Time
	onExpire func()
	resetAt  time.Time
	handle   TimerHandle
}

func newCountdown(view StatusView, sched Scheduler, now func() time.Time, onExpire func()) *countdown {
	return &countdown{
		view:     view,
		sched:    sched,
		now:      now,
		onExpire: onExpire,
	}
}

// start begins counting down to resetAt, superseding any running session.
// The first render happens immediately; later ones arrive once per second.
func (c *countdown) start(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.resetAt = resetAt
	c.view.SetSubmitEnabled(false)
	if c.renderLocked() {
		// Already past resetAt; renderLocked restored the view.
		return
	}
	c.handle = c.sched.Every(time.Second, c.tick)
}

// stop cancels the running session, if any, leaving the display as is.
func (c *countdown) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *countdown) stopLocked() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
}

func (c *countdown) tick() {
	c.mu.Lock()
	expired := c.renderLocked()
	if expired {
		c.stopLocked()
	}
	c.mu.Unlock()

	if expired && c.onExpire != nil {
		c.onExpire()
	}
}

// renderLocked draws the current remaining time and reports whether the
// session has reached zero. Reaching zero clears the status line and hands
// the submit control back.
func (c *countdown) renderLocked() bool {
	remaining := c.resetAt.Sub(c.now())
	if remaining <= 0 {
		c.view.SetStatus("")
		c.view.SetSubmitEnabled(true)
		return true
	}
	c.view.SetStatus("Submission limit reached. Try again in " + formatRemaining(remaining) + ".")
	return false
}

// formatRemaining renders a duration the way the form shows it: whole
// minutes and seconds by floor division.
func formatRemaining(d time.Duration) string {
	ms := d.Milliseconds()
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return strconv.FormatInt(minutes, 10) + "m " + strconv.FormatInt(seconds, 10) + "s"
}
