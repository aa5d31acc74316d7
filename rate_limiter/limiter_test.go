package rate_limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func msTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// flakyStore wraps a MemoryStore and fails on demand, standing in for
// disabled or quota-exhausted client storage.
type flakyStore struct {
	inner   *MemoryStore
	failGet bool
	failSet bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("storage disabled")
	}
	return s.inner.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("quota exceeded")
	}
	return s.inner.Set(ctx, key, value)
}

func TestSubmissionLimiter_Evaluate(t *testing.T) {
	var tests = []struct {
		name   string
		stored string // raw stored log, empty means absent
		nowMs  int64
		want   Decision
	}{
		{
			name:   "empty storage allows with full quota",
			stored: "",
			nowMs:  0,
			want:   Decision{State: Allow, Remaining: 5},
		},
		{
			name:   "one recent submission",
			stored: "[0]",
			nowMs:  1000,
			want:   Decision{State: Allow, Remaining: 4},
		},
		{
			name:   "five submissions inside the window deny",
			stored: "[0,1,2,3,4]",
			nowMs:  5,
			want:   Decision{State: Deny, Remaining: 0, ResetAt: msTime(3_600_000)},
		},
		{
			name:   "oldest entry ages out and frees a slot",
			stored: "[0,1,2,3,4]",
			nowMs:  3_600_000,
			want:   Decision{State: Allow, Remaining: 1},
		},
		{
			name:   "every entry aged out restores the full quota",
			stored: "[0,1,2,3,4]",
			nowMs:  3_600_005,
			want:   Decision{State: Allow, Remaining: 5},
		},
		{
			name:   "corrupted log treated as empty",
			stored: `{"not":"a log"}`,
			nowMs:  50,
			want:   Decision{State: Allow, Remaining: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			if tt.stored != "" {
				assert.NoError(t, store.Set(ctx, DefaultStorageKey, tt.stored))
			}

			limiter := NewSubmissionLimiter(store, WithClock(clockAt(msTime(tt.nowMs))))

			assert.Equal(t, tt.want, limiter.Evaluate(ctx))
		})
	}
}

func TestSubmissionLimiter_EvaluateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	assert.NoError(t, store.Set(ctx, DefaultStorageKey, "[0,1,2,3,4]"))

	limiter := NewSubmissionLimiter(store, WithClock(clockAt(msTime(5))))

	first := limiter.Evaluate(ctx)
	second := limiter.Evaluate(ctx)

	assert.Equal(t, first, second)
}

func TestSubmissionLimiter_EvaluateRewritesPrunedLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	assert.NoError(t, store.Set(ctx, DefaultStorageKey, "[0,1,2,3,4]"))

	limiter := NewSubmissionLimiter(store, WithClock(clockAt(msTime(3_600_000))))
	limiter.Evaluate(ctx)

	raw, ok, err := store.Get(ctx, DefaultStorageKey)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2,3,4]", raw)
}

func TestSubmissionLimiter_RecordAccepted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	limiter := NewSubmissionLimiter(store, WithClock(clockAt(msTime(100))))

	limiter.RecordAccepted(ctx)

	assert.Equal(t, Decision{State: Allow, Remaining: 4}, limiter.Evaluate(ctx))

	raw, ok, err := store.Get(ctx, DefaultStorageKey)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[100]", raw)
}

func TestSubmissionLimiter_FifthSubmissionFlipsToDeny(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := msTime(1000)
	limiter := NewSubmissionLimiter(store, WithClock(func() time.Time { return now }))

	for i := 0; i < MaxSubmissions; i++ {
		assert.True(t, limiter.Evaluate(ctx).Allowed())
		limiter.RecordAccepted(ctx)
		now = now.Add(time.Second)
	}

	d := limiter.Evaluate(ctx)
	assert.Equal(t, Deny, d.State)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, msTime(1000).Add(Window), d.ResetAt)
}

func TestSubmissionLimiter_CustomStorageKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := NewSubmissionLimiter(store, WithStorageKey("contact_form_submissions:a"), WithClock(clockAt(msTime(0))))
	b := NewSubmissionLimiter(store, WithStorageKey("contact_form_submissions:b"), WithClock(clockAt(msTime(0))))

	a.RecordAccepted(ctx)

	assert.Equal(t, 4, a.Evaluate(ctx).Remaining)
	assert.Equal(t, 5, b.Evaluate(ctx).Remaining)
}

func TestSubmissionLimiter_FailsOpenOnReadError(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{inner: NewMemoryStore(), failGet: true}

	limiter := NewSubmissionLimiter(store, WithClock(clockAt(msTime(0))))

	assert.Equal(t, Decision{State: Allow, Remaining: 5}, limiter.Evaluate(ctx))
}

func TestSubmissionLimiter_WriteFailureKeepsDecision(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	assert.NoError(t, inner.Set(ctx, DefaultStorageKey, "[0,1,2,3,4]"))
	store := &flakyStore{inner: inner, failSet: true}

	limiter := NewSubmissionLimiter(store, WithClock(clockAt(msTime(5))))

	// the deny computed from the read still stands even though the pruned
	// log could not be written back
	d := limiter.Evaluate(ctx)
	assert.Equal(t, Deny, d.State)

	// recording is a no-op on a broken store, but must not blow up
	limiter.RecordAccepted(ctx)
	raw, _, err := inner.Get(ctx, DefaultStorageKey)
	assert.NoError(t, err)
	assert.Equal(t, "[0,1,2,3,4]", raw)
}
