package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariebrainware/book-my-advocate/config"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	config.SetRedisClientForTest(client)
	t.Cleanup(func() {
		config.ResetRedisClientForTest()
		_ = client.Close()
	})
	return s
}

func TestSessionHelpersWithoutRedis(t *testing.T) {
	config.ResetRedisClientForTest()
	ctx := context.Background()

	assert.NoError(t, CacheSession(ctx, "tok", 1, model.RoleUser, time.Hour))
	_, _, err := LookupSession(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionCacheMiss)
	assert.NoError(t, DeleteSession(ctx, 1, "tok"))
	assert.NoError(t, InvalidateUserSessions(ctx, 1))
}

func TestCacheAndLookupSession(t *testing.T) {
	s := useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, CacheSession(ctx, "tok-1", 7, model.RoleAdvocate, time.Hour))

	uid, role, err := LookupSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, uint(7), uid)
	assert.Equal(t, model.RoleAdvocate, role)

	assert.True(t, s.Exists("session:tok-1"))
	assert.Greater(t, s.TTL("session:tok-1"), time.Duration(0))
	members, err := s.Members("user_sessions:7")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, members)
	assert.Equal(t, time.Duration(0), s.TTL("user_sessions:7"), "user set has no TTL")
}

func TestLookupSessionMalformedValues(t *testing.T) {
	s := useMiniredis(t)
	ctx := context.Background()

	for token, val := range map[string]string{
		"no-colon":  "123",
		"non-num":   "abc:user",
		"zero-uid":  "0:user",
		"bad-role":  "5:root",
		"empty-val": "",
	} {
		require.NoError(t, s.Set("session:"+token, val))
		_, _, err := LookupSession(ctx, token)
		assert.ErrorIs(t, err, ErrSessionCacheMiss, token)
	}
}

func TestDeleteSessionDropsEmptySet(t *testing.T) {
	s := useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, CacheSession(ctx, "a", 9, model.RoleUser, time.Hour))
	require.NoError(t, CacheSession(ctx, "b", 9, model.RoleUser, time.Hour))

	require.NoError(t, DeleteSession(ctx, 9, "a"))
	assert.False(t, s.Exists("session:a"))
	assert.True(t, s.Exists("user_sessions:9"))

	require.NoError(t, DeleteSession(ctx, 9, "b"))
	assert.False(t, s.Exists("user_sessions:9"))
}

func TestInvalidateUserSessions(t *testing.T) {
	s := useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, CacheSession(ctx, "x", 4, model.RoleUser, time.Hour))
	require.NoError(t, CacheSession(ctx, "y", 4, model.RoleUser, time.Hour))
	require.NoError(t, CacheSession(ctx, "z", 5, model.RoleUser, time.Hour))

	require.NoError(t, InvalidateUserSessions(ctx, 4))

	assert.False(t, s.Exists("session:x"))
	assert.False(t, s.Exists("session:y"))
	assert.False(t, s.Exists("user_sessions:4"))
	assert.True(t, s.Exists("session:z"))
}

func TestCacheSessionSetError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	t.Cleanup(config.ResetRedisClientForTest)

	mock.ExpectSet("session:tok", "1:user", time.Hour).SetErr(errors.New("redis down"))

	err := CacheSession(context.Background(), "tok", 1, model.RoleUser, time.Hour)
	assert.EqualError(t, err, "redis down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupSessionRedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	t.Cleanup(config.ResetRedisClientForTest)

	mock.ExpectGet("session:tok").SetErr(errors.New("timeout"))

	_, _, err := LookupSession(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrSessionCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}
