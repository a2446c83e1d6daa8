package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still carries our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis serializes cycles across every instance sharing the redis server.
// The key expires after ttl so a crashed holder cannot block forever.
type Redis struct {
	rdb *redis.Client
	key string
	ttl time.Duration

	mu    sync.Mutex
	token string
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, key string, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{rdb: rdb, key: key, ttl: ttl}, nil
}

func (r *Redis) TryLock(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" {
		return false, nil
	}

	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set lock key: %w", err)
	}
	if ok {
		r.token = token
	}
	return ok, nil
}

func (r *Redis) Unlock(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" {
		return ErrNotHeld
	}
	token := r.token
	r.token = ""

	deleted, err := releaseScript.Run(ctx, r.rdb, []string{r.key}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock key: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("release lock key %s: %w", r.key, ErrNotHeld)
	}
	return nil
}

// Close closes the redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
