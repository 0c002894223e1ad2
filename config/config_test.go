package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test that LoadConfig returns a non-nil config and respects APPENV=test
func TestLoadConfigAndConnectMySQL_TestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	db, err := ConnectMySQL()
	require.NoError(t, err)
	require.NotNil(t, db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

func TestConnectMySQL_ForeignKeysEnabledInTestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")

	db, err := ConnectMySQL()
	require.NoError(t, err)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "42")
	t.Setenv("CFG_TEST_BAD_INT", "x")
	t.Setenv("CFG_TEST_BOOL", "false")
	t.Setenv("CFG_TEST_DURATION", "90s")
	t.Setenv("CFG_TEST_EMPTY", "")

	assert.Equal(t, 42, getInt("CFG_TEST_INT", 1))
	assert.Equal(t, 1, getInt("CFG_TEST_BAD_INT", 1))
	assert.False(t, getBool("CFG_TEST_BOOL", true))
	assert.True(t, getBool("CFG_TEST_MISSING", true))
	assert.Equal(t, 90*time.Second, getDuration("CFG_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getDuration("CFG_TEST_MISSING", time.Second))
	assert.Equal(t, "fallback", getEnv("CFG_TEST_EMPTY", "fallback"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, splitList(" http://a.test, ,http://b.test "))
	assert.Nil(t, splitList(""))
}
