package config

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SetRedisClientForTest injects a Redis client, typically a redismock or
// miniredis-backed client. Not for production use.
func SetRedisClientForTest(client *redis.Client) {
	setRedisClient(client)
}

// ResetRedisClientForTest clears the client and lets ConnectRedis run again.
func ResetRedisClientForTest() {
	setRedisClient(nil)
	redisOnce = sync.Once{}
}
