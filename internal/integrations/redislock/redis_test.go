package redislock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memRedis эмулирует SET NX и скрипт освобождения в памяти.
type memRedis struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failSet error
}

func newMemRedis() *memRedis {
	return &memRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return redis.NewBoolResult(false, m.failSet)
	}
	if _, taken := m.values[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key] = value.(string)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *memRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[keys[0]] == args[0].(string) {
		delete(m.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestLocker_Exclusive(t *testing.T) {
	rdb := newMemRedis()
	l := New(rdb, zap.NewNop())
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "booking:completion-sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Minute, rdb.ttls["lock:booking:completion-sweep"])

	_, ok, err = l.TryLock(ctx, "booking:completion-sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	_, ok, err = l.TryLock(ctx, "booking:completion-sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocker_ReleaseKeepsForeignLock(t *testing.T) {
	rdb := newMemRedis()
	l := New(rdb, zap.NewNop())
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// TTL истёк, ключ забрал другой инстанс.
	rdb.values["lock:k"] = "someone-else"
	release()
	assert.Equal(t, "someone-else", rdb.values["lock:k"])
}

func TestLocker_SetError(t *testing.T) {
	rdb := newMemRedis()
	rdb.failSet = errors.New("connection refused")
	l := New(rdb, zap.NewNop())

	release, ok, err := l.TryLock(context.Background(), "k", time.Minute)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
}
