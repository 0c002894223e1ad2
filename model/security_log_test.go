package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSecurityLogModel_CreateAndRead(t *testing.T) {
	db := setupTestDB(t, "security_log", &SecurityLog{})

	entry := SecurityLog{
		EventType: "LOGIN_SUCCESS",
		UserID:    "123",
		Email:     "test@test.com",
		IP:        "192.168.1.1",
		Message:   "User logged in successfully",
		Details:   datatypes.JSON(`{"role":"user"}`),
	}
	require.NoError(t, db.Create(&entry).Error)
	assert.NotZero(t, entry.ID)

	var found SecurityLog
	require.NoError(t, db.First(&found, entry.ID).Error)
	assert.Equal(t, "LOGIN_SUCCESS", found.EventType)
	assert.JSONEq(t, `{"role":"user"}`, string(found.Details))
	assert.False(t, found.CreatedAt.IsZero())
}
