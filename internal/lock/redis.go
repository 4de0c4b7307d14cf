package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the lock only if it still carries our token, so
// an expired holder cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every service instance pointing at
// the same Redis. Locks expire after TTL if the holder dies.
type RedisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	prefix     string
	logger     zerolog.Logger
}

type RedisLockerParams struct {
	Client     *redis.Client
	TTL        time.Duration
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// NewRedisLocker creates a RedisLocker. RetryDelay defaults to 10ms.
func NewRedisLocker(params RedisLockerParams) *RedisLocker {
	retry := params.RetryDelay
	if retry <= 0 {
		retry = 10 * time.Millisecond
	}
	return &RedisLocker{
		client:     params.Client,
		ttl:        params.TTL,
		retryDelay: retry,
		prefix:     "lelang:lock:auction:",
		logger:     params.Logger.With().Str("component", "redis_locker").Logger(),
	}
}

// Lock polls SET NX until it wins the key or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// Release even if the caller's context is already cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Error().Err(err).Str("key", redisKey).Msg("Failed to release lock")
		}
	}, nil
}

// NewRedisClient creates a Redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	})
}

// PingRedis tests the Redis connection
func PingRedis(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}
