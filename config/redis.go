package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisMu     sync.RWMutex
)

// ConnectRedis initializes a singleton Redis client from REDIS_* variables.
// Redis is optional: with REDIS_ENABLED unset or false, or under APPENV=test,
// it returns (nil, nil) and callers fall back to the database.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		if os.Getenv("APPENV") == "test" {
			return
		}
		if enabled, _ := strconv.ParseBool(os.Getenv("REDIS_ENABLED")); !enabled {
			return
		}

		addr := getEnv("REDIS_ADDR", "localhost:6379")
		dbNum := 0
		if v, e := strconv.Atoi(os.Getenv("REDIS_DB")); e == nil {
			dbNum = v
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       dbNum,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err = rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			err = fmt.Errorf("redis ping %s: %w", addr, err)
			return
		}

		setRedisClient(rdb)
	})
	return GetRedisClient(), err
}

// GetRedisClient returns the initialized Redis client (may be nil if ConnectRedis failed or not called).
func GetRedisClient() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}

func setRedisClient(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = client
}
