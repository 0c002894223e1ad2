package endpoint

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariebrainware/book-my-advocate/middleware"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	r, db := setupEndpointTest(t)
	r.POST("/auth/register", Register)
	r.POST("/auth/login", Login)
	auth := r.Group("/auth", middleware.ValidateLoginToken())
	auth.POST("/logout", Logout)
	auth.GET("/me", Me)
	return r, db
}

func perform(t *testing.T, r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w, resp, err := performRequest(r, spec)
	require.NoError(t, err, "decode response: %s", w.Body.String())
	return w, resp
}

func register(t *testing.T, r *gin.Engine, body map[string]interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return perform(t, r, requestSpec{method: http.MethodPost, requestPath: "/auth/register", body: body})
}

func login(t *testing.T, r *gin.Engine, email, password string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return perform(t, r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/auth/login",
		body:        map[string]string{"email": email, "password": password},
	})
}

func TestRegister(t *testing.T) {
	r, db := setupAuthRouter(t)

	t.Run("user by default", func(t *testing.T) {
		rec, _ := register(t, r, map[string]interface{}{"name": "  John   Client ", "email": "John@Example.com", "password": "secret1"})
		assertStatus(t, rec, http.StatusCreated)

		var auth AuthResponse
		dataOf(t, rec, &auth)
		assert.NotEmpty(t, auth.Token)
		assert.Equal(t, "John Client", auth.User.Name)
		assert.Equal(t, "john@example.com", auth.User.Email)
		assert.Equal(t, model.RoleUser, auth.User.Role)
		assert.Nil(t, auth.Advocate)
		assert.NotContains(t, rec.Body.String(), "argon2")

		var sessions int64
		require.NoError(t, db.Model(&model.Session{}).Where("user_id = ?", auth.User.ID).Count(&sessions).Error)
		assert.EqualValues(t, 1, sessions)
	})

	t.Run("advocate gets a profile", func(t *testing.T) {
		rec, _ := register(t, r, map[string]interface{}{
			"name": "Jane Doe", "email": "jane@example.com", "password": "secret1", "role": "advocate",
			"specialization": "Family Law", "hourly_rate": 500, "bar_council_number": "D/1/2015",
		})
		assertStatus(t, rec, http.StatusCreated)

		var auth AuthResponse
		dataOf(t, rec, &auth)
		require.NotNil(t, auth.Advocate)
		assert.Equal(t, model.RoleAdvocate, auth.User.Role)
		assert.Equal(t, "Family Law", auth.Advocate.Specialization)
		assert.Equal(t, 500.0, auth.Advocate.HourlyRate)
		assert.True(t, auth.Advocate.IsAvailable)
		assert.False(t, auth.Advocate.IsVerified)
	})

	t.Run("duplicate bar council number rolls back the user", func(t *testing.T) {
		rec, resp := register(t, r, map[string]interface{}{
			"name": "Copy Cat", "email": "copy@example.com", "password": "secret1", "role": "advocate",
			"bar_council_number": "D/1/2015",
		})
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorMessage(t, resp, "Bar council number already registered")

		var users int64
		require.NoError(t, db.Model(&model.User{}).Where("email = ?", "copy@example.com").Count(&users).Error)
		assert.Zero(t, users)
	})

	tests := []struct {
		name    string
		body    map[string]interface{}
		wantMsg string
	}{
		{"duplicate email", map[string]interface{}{"name": "Again", "email": "JOHN@example.com", "password": "secret1"}, "Email already registered"},
		{"admin role", map[string]interface{}{"name": "Root", "email": "root@example.com", "password": "secret1", "role": "admin"}, "Invalid role"},
		{"unknown role", map[string]interface{}{"name": "Who", "email": "who@example.com", "password": "secret1", "role": "judge"}, "Invalid role"},
		{"short password", map[string]interface{}{"name": "Short", "email": "short@example.com", "password": "123"}, "Invalid request payload"},
		{"bad email", map[string]interface{}{"name": "Bad", "email": "not-an-email", "password": "secret1"}, "Invalid request payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := register(t, r, tt.body)
			assertStatus(t, rec, http.StatusBadRequest)
			assertErrorMessage(t, resp, tt.wantMsg)
		})
	}
}

func TestLoginMeLogout(t *testing.T) {
	r, _ := setupAuthRouter(t)
	rec, _ := register(t, r, map[string]interface{}{
		"name": "Jane Doe", "email": "jane@example.com", "password": "secret1", "role": "advocate",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("wrong password", func(t *testing.T) {
		rec, resp := login(t, r, "jane@example.com", "wrong-pass")
		assertStatus(t, rec, http.StatusUnauthorized)
		assertErrorMessage(t, resp, "Invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		rec, resp := login(t, r, "nobody@example.com", "secret1")
		assertStatus(t, rec, http.StatusUnauthorized)
		assertErrorMessage(t, resp, "Invalid email or password")
	})

	rec, _ = login(t, r, "Jane@Example.com", "secret1")
	assertStatus(t, rec, http.StatusOK)
	var auth AuthResponse
	dataOf(t, rec, &auth)
	require.NotEmpty(t, auth.Token)
	require.NotNil(t, auth.Advocate)

	rec, _ = perform(t, r, requestSpec{method: http.MethodGet, requestPath: "/auth/me", headers: bearer(auth.Token)})
	assertStatus(t, rec, http.StatusOK)
	var me AccountResponse
	dataOf(t, rec, &me)
	assert.Equal(t, auth.User.ID, me.User.ID)
	require.NotNil(t, me.Advocate)
	assert.Equal(t, auth.Advocate.ID, me.Advocate.ID)

	rec, _ = perform(t, r, requestSpec{method: http.MethodGet, requestPath: "/auth/me"})
	assertStatus(t, rec, http.StatusUnauthorized)

	rec, _ = perform(t, r, requestSpec{method: http.MethodPost, requestPath: "/auth/logout", headers: bearer(auth.Token)})
	assertStatus(t, rec, http.StatusOK)

	rec, resp := perform(t, r, requestSpec{method: http.MethodGet, requestPath: "/auth/me", headers: bearer(auth.Token)})
	assertStatus(t, rec, http.StatusUnauthorized)
	assertErrorMessage(t, resp, "Unauthorized")
}
