package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/book-my-advocate/config"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/redis/go-redis/v9"
)

// ErrSessionCacheMiss means Redis is unavailable or holds no usable entry.
var ErrSessionCacheMiss = errors.New("session cache miss")

func sessionKey(token string) string { return fmt.Sprintf("session:%s", token) }

func userSetKey(userID uint) string { return fmt.Sprintf("user_sessions:%d", userID) }

// CacheSession stores session:<token> -> "<user_id>:<role>" until the token
// expires and indexes the token under the user so it can be revoked.
func CacheSession(ctx context.Context, token string, userID uint, role model.Role, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Set(ctx, sessionKey(token), fmt.Sprintf("%d:%s", userID, role), ttl).Err(); err != nil {
		return err
	}
	return AddSessionToUserSet(ctx, userID, token)
}

// LookupSession resolves a token from Redis. Malformed values count as a miss
// so the caller falls back to the database.
func LookupSession(ctx context.Context, token string) (uint, model.Role, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, "", ErrSessionCacheMiss
	}
	val, err := rdb.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, "", ErrSessionCacheMiss
		}
		return 0, "", fmt.Errorf("%w: %v", ErrSessionCacheMiss, err)
	}

	idPart, rolePart, ok := strings.Cut(val, ":")
	if !ok {
		return 0, "", ErrSessionCacheMiss
	}
	uid, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || uid == 0 {
		return 0, "", ErrSessionCacheMiss
	}
	role, err := model.ParseRole(rolePart)
	if err != nil {
		return 0, "", ErrSessionCacheMiss
	}
	return uint(uid), role, nil
}

// DeleteSession removes one cached token.
func DeleteSession(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return err
	}
	return RemoveSessionTokenFromUserSet(ctx, userID, token)
}

// AddSessionToUserSet adds the session token to the per-user Redis set.
// The set has no TTL; it is cleaned up by RemoveSessionTokenFromUserSet or
// InvalidateUserSessions.
func AddSessionToUserSet(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.SAdd(ctx, userSetKey(userID), token).Err(); err != nil {
		return err
	}
	return rdb.Persist(ctx, userSetKey(userID)).Err()
}

// removeTokenScript removes a token and deletes the set once it is empty.
var removeTokenScript = redis.NewScript(`
local removed = redis.call('SREM', KEYS[1], ARGV[1])
if removed > 0 and redis.call('SCARD', KEYS[1]) == 0 then
	redis.call('DEL', KEYS[1])
end
return removed
`)

// RemoveSessionTokenFromUserSet removes a single session token from the per-user set.
func RemoveSessionTokenFromUserSet(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	return removeTokenScript.Run(ctx, rdb, []string{userSetKey(userID)}, token).Err()
}

// InvalidateUserSessions deletes every cached token of the user and the set itself.
func InvalidateUserSessions(ctx context.Context, userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	members, err := rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(members)+1)
	for _, tok := range members {
		keys = append(keys, sessionKey(tok))
	}
	keys = append(keys, userSetKey(userID))
	return rdb.Del(ctx, keys...).Err()
}
