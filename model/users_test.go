package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserModel_DefaultRole(t *testing.T) {
	db := setupTestDB(t, "user_default_role", &User{})

	user := User{Name: "Test User", Email: "test@test.com", Password: "hashed_password"}
	require.NoError(t, db.Create(&user).Error)

	var found User
	require.NoError(t, db.First(&found, user.ID).Error)
	assert.Equal(t, RoleUser, found.Role)
}

func TestUserModel_UniqueEmail(t *testing.T) {
	db := setupTestDB(t, "user_unique_email", &User{})

	require.NoError(t, db.Create(&User{Name: "User 1", Email: "unique@test.com", Password: "hash"}).Error)
	err := db.Create(&User{Name: "User 2", Email: "unique@test.com", Password: "hash"}).Error
	assert.Error(t, err)
}

func TestUserModel_PasswordNeverSerialized(t *testing.T) {
	user := User{ID: 1, Name: "Salt Test", Email: "salt@test.com", Password: "$argon2id$v=19$secret", Role: RoleAdvocate}
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "argon2id")
	assert.Contains(t, string(raw), `"role":"advocate"`)
}

func TestUserModel_DeleteCascadesToAdvocate(t *testing.T) {
	db := setupTestDB(t, "user_cascade", All()...)

	user := User{Name: "Jane Doe", Email: "jane@test.com", Password: "hash", Role: RoleAdvocate}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&Advocate{UserID: user.ID, Specialization: "Family Law"}).Error)

	require.NoError(t, db.Delete(&User{}, user.ID).Error)

	var n int64
	require.NoError(t, db.Model(&Advocate{}).Count(&n).Error)
	assert.Zero(t, n)
}
