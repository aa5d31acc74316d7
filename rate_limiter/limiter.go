package rate_limiter

import (
	"context"
	"time"

	"github.com/wrightpress/submission-limiter/internal/log"
	"go.uber.org/zap"
)

// Submission policy for the contact form. Fixed by product decision rather
// than configuration: five accepted submissions per rolling hour.
const (
	MaxSubmissions = 5
	Window         = time.Hour

	// DefaultStorageKey is where the submission log lives in the store.
	DefaultStorageKey = "contact_form_submissions"
)

type State uint32

const (
	Deny State = iota
	Allow
)

func (s State) String() string {
	if s == Allow {
		return "Allow"
	}
	return "Deny"
}

// Decision is the outcome of one rate limit check. ResetAt is meaningful
// only on Deny with a non-empty log: it is the moment the oldest logged
// submission leaves the window and a slot frees up. An empty log always
// allows, so Deny with a zero ResetAt does not occur.
type Decision struct {
	State     State
	Remaining int
	ResetAt   time.Time
}

func (d Decision) Allowed() bool { return d.State == Allow }

// SubmissionLimiter enforces the contact form policy against a log of
// accepted-submission timestamps kept in a Store. It trusts the injected
// clock, so a client that controls its own clock can step around the limit;
// that is acceptable for a courtesy limit, real enforcement belongs at the
// receiving end.
//
// Evaluate and RecordAccepted never fail: a store that cannot be read is
// treated as empty, and a store that cannot be written keeps the in-memory
// decision for the current call. The limit may under-count after such
// faults; it never blocks a submission because of them.
//
// Concurrent writers sharing one key (multiple tabs, multiple server
// instances) can race on the read-modify-write of the log and miscount by a
// small margin. That is accepted; the limiter does no locking.
type SubmissionLimiter struct {
	store     Store
	key       string
	now       func() time.Time
	view      StatusView
	sched     Scheduler
	countdown *countdown
}

type Option func(*SubmissionLimiter)

// WithStorageKey overrides the storage key, e.g. to hold one log per client
// in a shared store.
func WithStorageKey(key string) Option {
	return func(l *SubmissionLimiter) { l.key = key }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *SubmissionLimiter) { l.now = now }
}

// WithView sets the display the countdown renders into.
func WithView(view StatusView) Option {
	return func(l *SubmissionLimiter) { l.view = view }
}

// WithScheduler overrides the countdown's timer source.
func WithScheduler(sched Scheduler) Option {
	return func(l *SubmissionLimiter) { l.sched = sched }
}

func NewSubmissionLimiter(store Store, opts ...Option) *SubmissionLimiter {
	l := &SubmissionLimiter{
		store: store,
		key:   DefaultStorageKey,
		now:   time.Now,
		view:  nopView{},
		sched: tickerScheduler{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.countdown = newCountdown(l.view, l.sched, l.now, l.flushExpired)
	return l
}

// Evaluate loads the submission log, drops entries that have left the
// window, writes the pruned log back so stale entries do not linger in the
// store, and reports whether another submission is allowed right now.
// Calling it repeatedly without an intervening RecordAccepted yields the
// same decision.
func (l *SubmissionLimiter) Evaluate(ctx context.Context) Decision {
	pruned := pruneExpired(l.loadLog(ctx), l.now())
	l.saveLog(ctx, pruned)

	d := Decision{Remaining: MaxSubmissions - len(pruned)}
	if d.Remaining > 0 {
		d.State = Allow
		return d
	}
	d.State = Deny
	if len(pruned) > 0 {
		d.ResetAt = pruned[0].Add(Window)
	}
	return d
}

// RecordAccepted appends the current time to the submission log. Call it
// only once the submission has actually been delivered; a failed attempt
// must not consume a slot. It does not re-check the limit itself; callers
// re-Evaluate afterwards so the submission that crossed the line flips the
// form to the limited state immediately.
func (l *SubmissionLimiter) RecordAccepted(ctx context.Context) {
	now := l.now()
	entries := append(pruneExpired(l.loadLog(ctx), now), now)
	l.saveLog(ctx, entries)
}

// PresentCountdown starts (or restarts) the live countdown toward resetAt,
// disabling submission until it expires.
func (l *SubmissionLimiter) PresentCountdown(resetAt time.Time) {
	l.countdown.start(resetAt)
}

// StopCountdown cancels any running countdown without touching the display.
func (l *SubmissionLimiter) StopCountdown() {
	l.countdown.stop()
}

// flushExpired runs when a countdown reaches zero: re-evaluating rewrites
// the stored log without the entries that just aged out.
func (l *SubmissionLimiter) flushExpired() {
	l.Evaluate(context.Background())
}

func (l *SubmissionLimiter) loadLog(ctx context.Context) []time.Time {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		log.Logger().Warn("Failed to read submission log, treating it as empty",
			zap.String("key", l.key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return decodeLog(raw)
}

func (l *SubmissionLimiter) saveLog(ctx context.Context, entries []time.Time) {
	// A log that cannot be written costs durability, not availability: the
	// current decision stands and the limit may under-count later.
	if err := l.store.Set(ctx, l.key, encodeLog(entries)); err != nil {
		log.Logger().Warn("Failed to write submission log",
			zap.String("key", l.key), zap.Error(err))
	}
}
