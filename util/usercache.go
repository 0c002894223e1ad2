package util

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// userEmails maps a user ID to the account email for log enrichment.
var userEmails = cache.New(30*time.Minute, 10*time.Minute)

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// UserEmailCacheGet returns email and true if present in cache.
func UserEmailCacheGet(userID uint) (string, bool) {
	v, ok := userEmails.Get(userKey(userID))
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

// UserEmailCacheSet sets the email for a userID in the cache.
func UserEmailCacheSet(userID uint, email string) {
	userEmails.Set(userKey(userID), email, cache.DefaultExpiration)
}

// UserEmailCacheDelete drops a cached email, e.g. after the user is deleted.
func UserEmailCacheDelete(userID uint) {
	userEmails.Delete(userKey(userID))
}

// GetUserEmail returns the email for userID using cache, falling back to DB.
func GetUserEmail(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if email, ok := UserEmailCacheGet(userID); ok {
		return email
	}
	if db == nil {
		return ""
	}
	var u struct{ Email string }
	if err := db.Table("users").Select("email").Where("id = ?", userID).Take(&u).Error; err != nil {
		return ""
	}
	if u.Email != "" {
		UserEmailCacheSet(userID, u.Email)
	}
	return u.Email
}
