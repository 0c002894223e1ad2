package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureSecurityLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := util.GetSecurityLogger()
	util.SetSecurityLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { util.SetSecurityLogger(original) })
	return &buf
}

func TestEndpointCallLoggerBasicRequest(t *testing.T) {
	buf := captureSecurityLog(t)

	r := gin.New()
	r.Use(DatabaseMiddleware(newInMemoryDB(t)))
	r.Use(EndpointCallLogger())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test?foo=bar", nil)
	req.RemoteAddr = "192.168.1.100:1234"
	req.Header.Set("User-Agent", "TestAgent/1.0")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"event":"ENDPOINT_CALL"`)
	assert.Contains(t, out, "GET /test -> 200")
	assert.Contains(t, out, `"ip":"192.168.1.100"`)
	assert.Contains(t, out, "TestAgent/1.0")
}

func TestEndpointCallLoggerAuthenticatedUser(t *testing.T) {
	buf := captureSecurityLog(t)
	db := newInMemoryDB(t)
	user := model.User{Name: "Logged", Email: "logged@example.com", Password: "x", Role: model.RoleUser}
	require.NoError(t, db.Create(&user).Error)
	util.UserEmailCacheDelete(user.ID)

	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.GET("/me", func(c *gin.Context) {
		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, model.RoleUser)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	out := buf.String()
	assert.Contains(t, out, `"email":"logged@example.com"`)
	assert.Contains(t, out, "GET /me -> 204")
}

func TestEndpointCallLoggerWithoutDatabase(t *testing.T) {
	buf := captureSecurityLog(t)

	r := gin.New()
	r.Use(EndpointCallLogger())
	r.GET("/missing-db", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing-db", nil))
	assert.Contains(t, buf.String(), "GET /missing-db -> 500")
}
