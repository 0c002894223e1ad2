package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
	EventAdminAction        SecurityEventType = "ADMIN_ACTION"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var (
	securityMu     sync.RWMutex
	securityLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "security").Logger()
	securityDB     *gorm.DB
)

// SetSecurityLogger replaces the logger security events are written to.
func SetSecurityLogger(l zerolog.Logger) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityLogger = l
}

// GetSecurityLogger returns the current security logger, mainly so tests can
// restore it.
func GetSecurityLogger() zerolog.Logger {
	securityMu.RLock()
	defer securityMu.RUnlock()
	return securityLogger
}

// SetSecurityLoggerDB sets the database security events are persisted to.
// A nil db disables persistence.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityDB = db
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(value)
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent writes the event to the security logger and, when a
// database is configured, persists it. Persistence failures are logged and
// never returned.
func LogSecurityEvent(event SecurityEvent) {
	securityMu.RLock()
	logger := securityLogger
	db := securityDB
	securityMu.RUnlock()

	level := zerolog.InfoLevel
	switch event.EventType {
	case EventLoginFailure, EventUnauthorizedAccess, EventRateLimitExceeded, EventSuspiciousActivity:
		level = zerolog.WarnLevel
	case EventEndpointCall:
		level = zerolog.DebugLevel
	}

	logEvent := logger.WithLevel(level).
		Str("event", string(event.EventType)).
		Str("user_id", sanitizeLogValue(event.UserID)).
		Str("email", sanitizeLogValue(event.Email)).
		Str("ip", sanitizeLogValue(event.IP)).
		Str("user_agent", sanitizeLogValue(event.UserAgent))
	if len(event.Details) > 0 {
		logEvent = logEvent.Int("details_count", len(event.Details))
	}
	logEvent.Msg(sanitizeLogValue(event.Message))

	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Email:     sanitizeLogValue(event.Email),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(formatLocation(GetIPLocation(event.IP))),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&entry).Error; err != nil {
		logger.Error().Err(err).Msg("failed to persist security event")
	}
}

func formatLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + "/" + country
	case country != "":
		return country
	default:
		return city
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    fmt.Sprintf("%d", userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogLogout logs a logout event
func LogLogout(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    fmt.Sprintf("%d", userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(userID, ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    userID,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}

// LogSuspiciousActivity records a request that looks forged or replayed
// rather than merely unauthenticated.
func LogSuspiciousActivity(userID, ip, userAgent, reason string, details map[string]interface{}) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSuspiciousActivity,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Suspicious activity: %s", reason),
		Details:   details,
	})
}

// LogAdminAction records a mutation performed by an administrator.
func LogAdminAction(adminID uint, ip, action string, details map[string]interface{}) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventAdminAction,
		UserID:    fmt.Sprintf("%d", adminID),
		IP:        ip,
		Message:   action,
		Details:   details,
	})
}
