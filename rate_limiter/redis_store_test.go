package rate_limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_RoundTrip(t *testing.T) {
	server, err := miniredis.Run()
	assert.Nil(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "contact_form_submissions:missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Set(ctx, "contact_form_submissions:client", "[100,200]"))

	raw, ok, err := store.Get(ctx, "contact_form_submissions:client")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[100,200]", raw)

	// stale logs age out of redis on their own
	assert.Greater(t, int64(server.TTL("contact_form_submissions:client")), int64(Window))
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	server, err := miniredis.Run()
	assert.Nil(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	defer client.Close()

	server.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	_, _, err = store.Get(ctx, "contact_form_submissions")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "contact_form_submissions", "[]"))
}

func TestSubmissionLimiter_WithRedisStore(t *testing.T) {
	server, err := miniredis.Run()
	assert.Nil(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	defer client.Close()

	ctx := context.Background()
	now := msTime(1000)
	limiter := NewSubmissionLimiter(NewRedisStore(client), WithClock(func() time.Time { return now }))

	for i := 0; i < MaxSubmissions; i++ {
		assert.True(t, limiter.Evaluate(ctx).Allowed())
		limiter.RecordAccepted(ctx)
		now = now.Add(time.Second)
	}

	d := limiter.Evaluate(ctx)
	assert.Equal(t, Deny, d.State)
	assert.Equal(t, msTime(1000).Add(Window), d.ResetAt)
}
