package infra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
)

// HashClient is the subset of the go-redis client used by RedisStore.
type HashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisConfig holds connection parameters for the performance store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, storeError("redis ping "+cfg.Addr, err)
	}
	return rdb, nil
}

// RedisStore keeps pair performance in a Redis hash, one JSON field per pair.
//
// Key schema:
//
//	{key} - hash of pair key -> JSON PairPerformance
type RedisStore struct {
	rdb HashClient
	key string
}

// NewRedisStore creates a RedisStore on key.
func NewRedisStore(rdb HashClient, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// Load reads every field of the hash. A missing key is an empty map.
func (s *RedisStore) Load(ctx context.Context) (map[string]domain.PairPerformance, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, storeError("redis hgetall "+s.key, err)
	}

	records := make(map[string]domain.PairPerformance, len(fields))
	for pair, raw := range fields {
		var rec domain.PairPerformance
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, storeError(fmt.Sprintf("redis decode %s", pair), err)
		}
		records[pair] = rec
	}
	return records, nil
}

// Save writes all records in one HSET.
func (s *RedisStore) Save(ctx context.Context, records map[string]domain.PairPerformance) error {
	if len(records) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(records))
	for pair, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return storeError(fmt.Sprintf("redis encode %s", pair), err)
		}
		values[pair] = string(data)
	}

	if err := s.rdb.HSet(ctx, s.key, values).Err(); err != nil {
		return storeError("redis hset "+s.key, err)
	}
	return nil
}
