package endpoint

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		in       string
		def, max int
		want     int
	}{
		{"", 10, 0, 10},
		{"abc", 10, 0, 10},
		{"-3", 10, 0, 10},
		{"0", 10, 0, 10},
		{"7", 10, 0, 7},
		{"900", 10, 500, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePositiveInt(tt.in, tt.def, tt.max), tt.in)
	}
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}
		got, err := parseIDParam(c, "id")
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, isDuplicateKey(nil))
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'a' for key 'email'")))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%family law%", likePattern("  Family Law "))
	assert.Equal(t, "%!_%", likePattern("_"))
	assert.Equal(t, "%100!% pro bono%", likePattern("100% Pro Bono"))
	assert.Equal(t, "%a!!b%", likePattern("a!b"))
}

func TestHandlersWithoutDatabase(t *testing.T) {
	r := newTestRouter(nil)
	rec, resp, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodGet,
		registerPath: "/advocates",
		requestPath:  "/advocates",
		handler:      SearchAdvocates,
	})
	assert.NoError(t, err)
	assertStatus(t, rec, http.StatusInternalServerError)
	assert.Equal(t, "Internal server error", resp["error"])
}
