package middleware

import (
	"fmt"
	"time"

	"github.com/ariebrainware/book-my-advocate/metrics"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger records every request as a Prometheus observation and
// as an ENDPOINT_CALL security event. Events are persisted when
// util.SetSecurityLoggerDB was called at startup.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), status, duration)

		userID, _ := GetUserID(c)
		role, _ := GetRole(c)

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}
		if userID != 0 {
			details["user_id"] = userID
		}
		if role != "" {
			details["role"] = string(role)
		}

		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    fmt.Sprintf("%d", userID),
			Email:     util.GetUserEmail(GetDB(c), userID),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
