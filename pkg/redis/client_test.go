package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
)

// memory is a map-backed stand-in for the handful of commands Client issues.
type memory struct {
	mu      sync.Mutex
	data    map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
	fail    error
}

func newMemory() *memory {
	return &memory{data: map[string]string{}, counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (m *memory) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.fail)
}

func (m *memory) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewStringResult("", m.fail)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memory) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *memory) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *memory) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memory) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewIntResult(0, m.fail)
	}
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *memory) PExpire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rc:session:abc", Key("session", "abc"))
	assert.Equal(t, "rc:idem:u1", Key("idem", " ", "u1 "))
	assert.Equal(t, "rc", Key())
}

func TestLookupMapsMissingKeyToNotFound(t *testing.T) {
	c := &Client{cmd: newMemory()}
	ctx := context.Background()

	_, found, err := c.Lookup(ctx, "rc:missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Put(ctx, "rc:k", "v", time.Minute))
	v, found, err := c.Lookup(ctx, "rc:k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Drop(ctx, "rc:k"))
	_, found, err = c.Lookup(ctx, "rc:k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLookupSurfacesBackendErrors(t *testing.T) {
	mem := newMemory()
	mem.fail = errors.New("connection reset")
	c := &Client{cmd: mem}

	_, _, err := c.Lookup(context.Background(), "rc:k")
	assert.ErrorContains(t, err, "connection reset")
	assert.Error(t, c.Ping(context.Background()))
}

func TestPutIfAbsentOnlyOnce(t *testing.T) {
	c := &Client{cmd: newMemory()}
	ctx := context.Background()

	ok, err := c.PutIfAbsent(ctx, "rc:idem:1", "first", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.PutIfAbsent(ctx, "rc:idem:1", "second", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, _ := c.Lookup(ctx, "rc:idem:1")
	assert.Equal(t, "first", v)
}

func TestHitSetsWindowOnFirstHitOnly(t *testing.T) {
	mem := newMemory()
	c := &Client{cmd: mem}
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := c.Hit(ctx, "rc:rl:login", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, map[string]time.Duration{"rc:rl:login": time.Minute}, mem.expires)
}

func TestOptionsPrefersURL(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://:secret@cache.internal:6380/2",
		Address:     "ignored:6379",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}

func TestOptionsFallsBackToAddress(t *testing.T) {
	opts, err := options(config.RedisConfig{Address: "localhost:6379", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)

	_, err = options(config.RedisConfig{})
	assert.Error(t, err)
}

func TestCloseWithoutConnection(t *testing.T) {
	assert.NoError(t, (&Client{cmd: newMemory()}).Close())
}
