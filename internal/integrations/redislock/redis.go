package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Leganyst/therapy-booking/internal/booking"
	"github.com/Leganyst/therapy-booking/internal/config"
)

// Снимаем ключ, только если он всё ещё наш: после истечения TTL его мог взять другой инстанс.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Commander — подмножество redis.Cmdable, нужное блокировке.
type Commander interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Locker — booking.Locker поверх SET NX PX.
type Locker struct {
	rdb    Commander
	prefix string
	log    *zap.Logger
}

var _ booking.Locker = (*Locker)(nil)

func New(rdb Commander, log *zap.Logger) *Locker {
	return &Locker{rdb: rdb, prefix: "lock:", log: log}
}

// NewClient открывает клиент Redis по конфигурации.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}
	full := l.prefix + key

	ok, err := l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Контекст вызывающего к этому моменту может быть уже отменён.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := l.rdb.Eval(ctx, releaseScript, []string{full}, token).Err(); err != nil {
			l.log.Warn("release lock failed", zap.String("key", full), zap.Error(err))
		}
	}
	return release, true, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
