package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestGuard(limit int) (*Guard, *clock, *MemoryStore) {
	store := NewMemoryStore()
	g := NewGuard(store, limit, time.Hour)
	clk := &clock{t: time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC)}
	g.now = clk.now
	return g, clk, store
}

func TestGuard_CountsUpToLimit(t *testing.T) {
	g, _, _ := newTestGuard(3)
	ctx := context.Background()

	st, err := g.Check(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Remaining)
	assert.True(t, st.Allowed())

	for i := 1; i <= 3; i++ {
		st, err = g.Record(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, i, st.Used)
	}
	assert.Equal(t, 0, st.Remaining)
	assert.False(t, st.Allowed())

	st, err = g.Check(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Allowed())

	other, err := g.Check(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, other.Allowed())
}

func TestGuard_ResetsAfterWindow(t *testing.T) {
	g, clk, _ := newTestGuard(1)
	ctx := context.Background()

	first, err := g.Record(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, first.Allowed())
	assert.Equal(t, clk.t.Add(time.Hour), first.ResetAt)

	clk.t = clk.t.Add(59 * time.Minute)
	st, _ := g.Check(ctx, "s1")
	assert.False(t, st.Allowed())
	assert.Equal(t, time.Minute, st.RetryAfter(clk.t))

	clk.t = clk.t.Add(time.Minute)
	st, _ = g.Check(ctx, "s1")
	assert.True(t, st.Allowed())
	assert.Equal(t, 0, st.Used)

	st, _ = g.Record(ctx, "s1")
	assert.Equal(t, 1, st.Used)
	assert.Equal(t, clk.t.Add(time.Hour), st.ResetAt)
}

func TestGuard_RequiresID(t *testing.T) {
	g, _, _ := newTestGuard(1)
	_, err := g.Check(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = g.Record(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestGuard_Defaults(t *testing.T) {
	g := NewGuard(NewMemoryStore(), 0, 0)
	assert.Equal(t, DefaultLimit, g.Limit())
	assert.Equal(t, DefaultWindow, g.Window())
}

func TestStatus_RetryAfterNeverNegative(t *testing.T) {
	now := time.Now()
	st := Status{ResetAt: now.Add(-time.Second)}
	assert.Zero(t, st.RetryAfter(now))
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment(context.Background(), "s", now, time.Hour)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, ok, err := store.Get(context.Background(), "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, c.Count)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, _ = store.Increment(ctx, "old", start, time.Hour)
	_, _ = store.Increment(ctx, "new", start.Add(30*time.Minute), time.Hour)

	removed := store.Sweep(start.Add(time.Hour), time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, ok, _ := store.Get(ctx, "old")
	assert.False(t, ok)
}

func TestRedisStore_PropagatesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	g := NewGuard(NewRedisStore(client), 5, time.Hour)
	_, err := g.Check(context.Background(), "s1")
	assert.Error(t, err)
	_, err = g.Record(context.Background(), "s1")
	assert.Error(t, err)
}
