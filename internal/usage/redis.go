package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// reserveScript increments KEYS[1] only while it is below ARGV[1] and
// refreshes its TTL (ARGV[2], milliseconds). Returns {incremented, value}.
var reserveScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return {0, current}
end
current = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return {1, current}
`)

var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// RedisStore shares counters between replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RedisStore) IncrementBelow(ctx context.Context, key string, limit int, ttl time.Duration) (int, bool, error) {
	res, err := reserveScript.Run(ctx, s.client, []string{key}, limit, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, err
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected reserve script result %v", res)
	}
	return int(res[1]), res[0] == 1, nil
}

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, s.client, []string{key}).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
