package subscribers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is the Redis set holding subscribed chat ids.
const DefaultRedisKey = "soupbot:subscribers"

// RedisStore keeps subscribers in a Redis set so they survive restarts.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisClient creates a client and pings it once.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Add(ctx context.Context, chatID int64) (bool, error) {
	n, err := s.rdb.SAdd(ctx, s.key, chatID).Result()
	if err != nil {
		return false, fmt.Errorf("error adding subscriber: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Remove(ctx context.Context, chatID int64) (bool, error) {
	n, err := s.rdb.SRem(ctx, s.key, chatID).Result()
	if err != nil {
		return false, fmt.Errorf("error removing subscriber: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) List(ctx context.Context) ([]int64, error) {
	members, err := s.rdb.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid subscriber %q in %s: %w", m, s.key, err)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
