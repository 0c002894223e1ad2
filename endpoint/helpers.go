package endpoint

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ariebrainware/book-my-advocate/middleware"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Sentinel errors returned by the store helpers of this package and mapped to
// HTTP responses by the handlers.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrBarCouncilTaken        = errors.New("bar council number already registered")
	ErrAdvocateNotFound       = errors.New("advocate not found")
	ErrAdvocateProfileMissing = errors.New("advocate profile not found")
	ErrServiceNotOwned        = errors.New("service does not belong to this advocate")
	ErrBookingNotFound        = errors.New("booking not found or unauthorized")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInvalidBooking         = errors.New("invalid booking or booking not completed")
	ErrReviewExists           = errors.New("review already exists for this booking")
)

const maxPageSize = 500

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// currentUserOrRespond returns the authenticated caller. The role gate runs
// first, so a miss here means the route was wired without it.
func currentUserOrRespond(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Unauthorized", Err: fmt.Errorf("user id not found in context")})
		return 0, false
	}
	return userID, true
}

// parseIDParam parses a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer", name)
	}
	if id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return uint(id), nil
}

func idParamOrRespond(c *gin.Context, name string) (uint, bool) {
	id, err := parseIDParam(c, name)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return 0, false
	}
	return id, true
}

// parsePositiveInt parses a positive integer from a query value returning a default
// when the value is missing or invalid. If max > 0 it caps the returned value.
func parsePositiveInt(q string, defaultVal, max int) int {
	if q == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(q)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// parsePagination reads optional limit and offset. A zero limit means the
// whole listing.
func parsePagination(c *gin.Context) (limit, offset int) {
	return parsePositiveInt(c.Query("limit"), 0, maxPageSize), parsePositiveInt(c.Query("offset"), 0, 0)
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		if limit == 0 {
			// MySQL and SQLite reject OFFSET without LIMIT.
			query = query.Limit(math.MaxInt32)
		}
		query = query.Offset(offset)
	}
	return query
}

// likeEscaper escapes LIKE wildcards so user input matches literally. The
// escape character must agree with the ESCAPE clause in likeClause.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likeClause is the case-insensitive substring condition on col.
func likeClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '!'"
}

// likePattern builds the substring pattern bound to a likeClause.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// isDuplicateKey reports a unique constraint violation. Dialects with error
// translation return gorm.ErrDuplicatedKey; the text check covers the rest.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// findAdvocateByUser loads the advocate profile owned by userID.
func findAdvocateByUser(db *gorm.DB, userID uint) (model.Advocate, error) {
	var advocate model.Advocate
	err := db.Where("user_id = ?", userID).First(&advocate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return advocate, ErrAdvocateProfileMissing
	}
	if err != nil {
		return advocate, fmt.Errorf("load advocate for user %d: %w", userID, err)
	}
	return advocate, nil
}

// callerAdvocateOrRespond resolves the caller's advocate profile, answering
// 404 when the account has none.
func callerAdvocateOrRespond(c *gin.Context, db *gorm.DB) (model.Advocate, bool) {
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return model.Advocate{}, false
	}
	advocate, err := findAdvocateByUser(db, userID)
	if errors.Is(err, ErrAdvocateProfileMissing) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Advocate profile not found", Err: err})
		return model.Advocate{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load advocate profile", Err: err})
		return model.Advocate{}, false
	}
	return advocate, true
}
