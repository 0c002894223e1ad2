package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSessionTestDB(t *testing.T) *gorm.DB {
	return setupTestDB(t, "session", &User{}, &Session{})
}

// mustCreateDefaultUser creates a user with a unique email.
func mustCreateDefaultUser(db *gorm.DB, t *testing.T) User {
	t.Helper()
	user := User{
		Name:     "Test User",
		Email:    fmt.Sprintf("test+%d@example.com", time.Now().UnixNano()),
		Password: "hash",
		Role:     RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// SessionCreateOpts groups parameters for creating a test session.
type SessionCreateOpts struct {
	UserID   uint
	Token    string
	Expires  time.Time
	ClientIP string
	Browser  string
}

func mustCreateSession(db *gorm.DB, t *testing.T, opts SessionCreateOpts) Session {
	t.Helper()
	s := Session{
		UserID:       opts.UserID,
		SessionToken: opts.Token,
		ExpiresAt:    opts.Expires,
		ClientIP:     opts.ClientIP,
		Browser:      opts.Browser,
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return s
}

func TestSessionModel_FindByToken(t *testing.T) {
	db := setupSessionTestDB(t)
	user := mustCreateDefaultUser(db, t)

	_ = mustCreateSession(db, t, SessionCreateOpts{UserID: user.ID, Token: "find-by-token", Expires: time.Now().Add(time.Hour)})

	var found Session
	err := db.Where("session_token = ?", "find-by-token").First(&found).Error
	assert.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
}

func TestSessionModel_TokenIsUnique(t *testing.T) {
	db := setupSessionTestDB(t)
	user := mustCreateDefaultUser(db, t)

	_ = mustCreateSession(db, t, SessionCreateOpts{UserID: user.ID, Token: "same", Expires: time.Now().Add(time.Hour)})
	err := db.Create(&Session{UserID: user.ID, SessionToken: "same", ExpiresAt: time.Now().Add(time.Hour)}).Error
	assert.Error(t, err)
}

func TestSessionModel_ActiveExcludesExpired(t *testing.T) {
	db := setupSessionTestDB(t)
	user := mustCreateDefaultUser(db, t)

	_ = mustCreateSession(db, t, SessionCreateOpts{UserID: user.ID, Token: "expired-token", Expires: time.Now().Add(-time.Hour)})
	_ = mustCreateSession(db, t, SessionCreateOpts{UserID: user.ID, Token: "valid-token", Expires: time.Now().Add(time.Hour)})

	var active []Session
	err := db.Where("user_id = ? AND expires_at > ?", user.ID, time.Now()).Find(&active).Error
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "valid-token", active[0].SessionToken)
}

func TestSessionModel_WithClientInfo(t *testing.T) {
	db := setupSessionTestDB(t)
	user := mustCreateDefaultUser(db, t)

	s := mustCreateSession(db, t, SessionCreateOpts{UserID: user.ID, Token: "client-info-token", Expires: time.Now().Add(time.Hour), ClientIP: "192.168.1.1", Browser: "Mozilla/5.0"})

	var found Session
	require.NoError(t, db.First(&found, s.ID).Error)
	assert.Equal(t, "192.168.1.1", found.ClientIP)
	assert.Equal(t, "Mozilla/5.0", found.Browser)
}

func TestSessionModel_DeletedWithUser(t *testing.T) {
	db := setupSessionTestDB(t)
	user := mustCreateDefaultUser(db, t)
	_ = mustCreateSession(db, t, SessionCreateOpts{UserID: user.ID, Token: "cascade", Expires: time.Now().Add(time.Hour)})

	require.NoError(t, db.Delete(&User{}, user.ID).Error)

	var n int64
	require.NoError(t, db.Model(&Session{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.Zero(t, n)
}
