package usage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/recipefy/backend/config"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTracker(t *testing.T, store Store, clk *clock) *Tracker {
	t.Helper()
	tracker, err := NewTracker(store, config.UsageConfig{GuestLimit: 1, UserLimit: 10, Timezone: "UTC"})
	require.NoError(t, err)
	tracker.now = clk.Now
	return tracker
}

func newMemoryStore(clk *clock) *MemoryStore {
	store := NewMemoryStore()
	store.now = clk.Now
	return store
}

func TestIdentity(t *testing.T) {
	id := uuid.MustParse("6f1c1f7e-33b5-4a4e-9f0e-3a1d8c5e2b10")
	assert.Equal(t, "user:6f1c1f7e-33b5-4a4e-9f0e-3a1d8c5e2b10", UserIdentity(id).String())
	assert.Equal(t, "guest:10.0.0.1", GuestIdentity("10.0.0.1").String())
}

func TestNewTrackerRejectsUnknownTimezone(t *testing.T) {
	_, err := NewTracker(NewMemoryStore(), config.UsageConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestTrackerCaps(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, newMemoryStore(clk), clk)
	ctx := context.Background()

	t.Run("guest gets one", func(t *testing.T) {
		guest := GuestIdentity("203.0.113.7")

		res, rec, err := tracker.Reserve(ctx, guest)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, 1, rec.Count)
		assert.Equal(t, 0, rec.Remaining)

		_, rec, err = tracker.Reserve(ctx, guest)
		assert.ErrorIs(t, err, ErrLimitReached)
		assert.Equal(t, 1, rec.Count)
		assert.Equal(t, 1, rec.Limit)
		assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), rec.ResetAt)
	})

	t.Run("user gets ten", func(t *testing.T) {
		user := UserIdentity(uuid.New())
		for i := 1; i <= 10; i++ {
			_, rec, err := tracker.Reserve(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, i, rec.Count)
			assert.Equal(t, 10-i, rec.Remaining)
		}
		_, _, err := tracker.Reserve(ctx, user)
		assert.ErrorIs(t, err, ErrLimitReached)

		rec, err := tracker.Status(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 10, rec.Count)
		assert.Equal(t, "2025-03-14", rec.Date)
	})
}

func TestTrackerRelease(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, newMemoryStore(clk), clk)
	ctx := context.Background()
	guest := GuestIdentity("guest-1")

	res, _, err := tracker.Reserve(ctx, guest)
	require.NoError(t, err)
	require.NoError(t, tracker.Release(ctx, res))

	rec, err := tracker.Status(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Count)

	// releasing twice never goes negative
	require.NoError(t, tracker.Release(ctx, res))
	rec, err = tracker.Status(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Count)

	assert.NoError(t, tracker.Release(ctx, nil))
}

func TestTrackerRollover(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)}
	tracker := newTestTracker(t, newMemoryStore(clk), clk)
	ctx := context.Background()
	guest := GuestIdentity("guest-2")

	_, _, err := tracker.Reserve(ctx, guest)
	require.NoError(t, err)
	_, _, err = tracker.Reserve(ctx, guest)
	require.ErrorIs(t, err, ErrLimitReached)

	clk.Advance(2 * time.Minute)

	rec, err := tracker.Status(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", rec.Date)
	assert.Equal(t, 0, rec.Count)
	assert.Equal(t, 1, rec.Remaining)

	_, _, err = tracker.Reserve(ctx, guest)
	assert.NoError(t, err)
}

func TestTrackerTimezone(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)}
	tracker, err := NewTracker(NewMemoryStore(), config.UsageConfig{GuestLimit: 1, UserLimit: 10, Timezone: "Asia/Tokyo"})
	require.NoError(t, err)
	tracker.now = clk.Now

	rec, err := tracker.Status(context.Background(), GuestIdentity("g"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", rec.Date)
}

func TestTrackerReset(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, newMemoryStore(clk), clk)
	ctx := context.Background()
	user := UserIdentity(uuid.New())

	for i := 0; i < 3; i++ {
		_, _, err := tracker.Reserve(ctx, user)
		require.NoError(t, err)
	}

	rec, err := tracker.Reset(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Count)
	assert.Equal(t, 10, rec.Remaining)

	rec, err = tracker.Status(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Count)
}

func TestMemoryStoreExpiry(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
	store := newMemoryStore(clk)
	ctx := context.Background()

	count, ok, err := store.IncrementBelow(ctx, "k", 5, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, count)

	clk.Advance(time.Hour)
	count, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func assertConcurrentReservations(t *testing.T, tracker *Tracker, id Identity) {
	t.Helper()
	ctx := context.Background()
	limit := tracker.Limit(id)

	var granted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := tracker.Reserve(ctx, id); err == nil {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), atomic.LoadInt32(&granted))
	rec, err := tracker.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, limit, rec.Count)
}

func TestConcurrentReservationsNeverExceedCap(t *testing.T) {
	clk := &clock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, newMemoryStore(clk), clk)

	assertConcurrentReservations(t, tracker, UserIdentity(uuid.New()))
	assertConcurrentReservations(t, tracker, GuestIdentity("crowd"))
}

// redisClient connects to REDIS_ADDR, or starts a container when
// INTEGRATION_TESTS=1.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		if os.Getenv("INTEGRATION_TESTS") != "1" {
			t.Skip("set REDIS_ADDR or INTEGRATION_TESTS=1 to run Redis tests")
		}
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })

		endpoint, err := container.Endpoint(ctx, "")
		require.NoError(t, err)
		addr = endpoint
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore(t *testing.T) {
	client := redisClient(t)
	clk := &clock{now: time.Now().UTC()}
	tracker := newTestTracker(t, NewRedisStore(client), clk)
	ctx := context.Background()

	t.Run("cap and release", func(t *testing.T) {
		guest := GuestIdentity("redis-" + uuid.NewString())

		res, _, err := tracker.Reserve(ctx, guest)
		require.NoError(t, err)
		_, _, err = tracker.Reserve(ctx, guest)
		assert.ErrorIs(t, err, ErrLimitReached)

		require.NoError(t, tracker.Release(ctx, res))
		rec, err := tracker.Status(ctx, guest)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Count)

		date, _ := tracker.today()
		ttl, err := client.TTL(ctx, tracker.key(guest, date)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 47*time.Hour)
	})

	t.Run("reset", func(t *testing.T) {
		user := UserIdentity(uuid.New())
		_, _, err := tracker.Reserve(ctx, user)
		require.NoError(t, err)

		_, err = tracker.Reset(ctx, user)
		require.NoError(t, err)
		rec, err := tracker.Status(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Count)
	})

	t.Run("concurrent reservations", func(t *testing.T) {
		assertConcurrentReservations(t, tracker, UserIdentity(uuid.New()))
	})
}
