package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by DatabaseMiddleware and ValidateLoginToken.
const (
	DBKey     = "db"
	UserIDKey = "user_id"
	RoleKey   = "role"
	TokenKey  = "token"
)

// DatabaseMiddleware injects the database handle into every request.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request's database handle bound to the request context,
// or nil when DatabaseMiddleware did not run.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(DBKey)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok || db == nil {
		return nil
	}
	if c.Request != nil {
		return db.WithContext(c.Request.Context())
	}
	return db
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// GetRole returns the authenticated user's role.
func GetRole(c *gin.Context) (model.Role, bool) {
	v, ok := c.Get(RoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(model.Role)
	return role, ok && role.Valid()
}

// GetToken returns the bearer token of the authenticated request.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

var (
	errMissingBearer  = errors.New("missing bearer token")
	errSessionRevoked = errors.New("session expired or revoked")
)

func bearerToken(c *gin.Context) (string, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}
	return strings.TrimSpace(token), nil
}

func rejectUnauthenticated(c *gin.Context, userID string, err error) {
	util.LogUnauthorizedAccess(userID, c.ClientIP(), c.Request.URL.Path, err.Error())
	util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Unauthorized", Err: err})
}

// rejectSessionMismatch handles a signed token whose session belongs to a
// different user.
func rejectSessionMismatch(c *gin.Context, claimed, owner uint) {
	uidLabel := strconv.FormatUint(uint64(claimed), 10)
	util.LogSuspiciousActivity(uidLabel, c.ClientIP(), c.Request.UserAgent(), "token user does not own its session",
		map[string]interface{}{"session_user_id": owner})
	rejectUnauthenticated(c, uidLabel, errSessionRevoked)
}

// ValidateLoginToken authenticates the bearer JWT and checks its session is
// still live: Redis first, then the sessions table. On success it stores the
// user ID, role and token in the context.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			rejectUnauthenticated(c, "", err)
			return
		}

		claims, err := util.ParseToken(token)
		if err != nil {
			rejectUnauthenticated(c, "", err)
			return
		}
		uidLabel := strconv.FormatUint(uint64(claims.UserID), 10)

		userID, role, err := util.LookupSession(c.Request.Context(), token)
		if err == nil && userID != claims.UserID {
			rejectSessionMismatch(c, claims.UserID, userID)
			return
		}
		if err != nil {
			db := GetDB(c)
			if db == nil {
				util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
				c.Abort()
				return
			}
			userID, role, err = lookupSessionInDB(db, token)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					rejectUnauthenticated(c, uidLabel, errSessionRevoked)
					return
				}
				util.CallServerError(c, util.APIErrorParams{Msg: "Failed to validate session", Err: err})
				c.Abort()
				return
			}
			if userID != claims.UserID {
				rejectSessionMismatch(c, claims.UserID, userID)
				return
			}
			if claims.ExpiresAt != nil {
				if err := util.CacheSession(c.Request.Context(), token, userID, role, time.Until(claims.ExpiresAt.Time)); err != nil {
					util.Logger(c).Warn().Err(err).Uint("user_id", userID).Msg("failed to cache session")
				}
			}
		}

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, role)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// lookupSessionInDB resolves a live session and the owner's current role.
func lookupSessionInDB(db *gorm.DB, token string) (uint, model.Role, error) {
	var row struct {
		UserID uint
		Role   model.Role
	}
	err := db.Table("sessions").
		Select("sessions.user_id, users.role").
		Joins("JOIN users ON users.id = sessions.user_id").
		Where("sessions.session_token = ? AND sessions.expires_at > ?", token, time.Now()).
		Take(&row).Error
	if err != nil {
		return 0, "", err
	}
	if !row.Role.Valid() {
		return 0, "", fmt.Errorf("user %d has invalid role %q", row.UserID, row.Role)
	}
	return row.UserID, row.Role, nil
}

// RequireRole lets the request through only when the authenticated role is
// one of roles. It must run after ValidateLoginToken.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			rejectUnauthenticated(c, "", errMissingBearer)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		util.LogUnauthorizedAccess(strconv.FormatUint(uint64(userID), 10), c.ClientIP(), c.Request.URL.Path,
			fmt.Sprintf("role %s not permitted", role))
		util.CallForbidden(c, util.APIErrorParams{Msg: "Access denied", Err: fmt.Errorf("access denied: requires role %s", joinRoles(roles))})
	}
}

func joinRoles(roles []model.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}
