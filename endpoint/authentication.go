package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/book-my-advocate/config"
	"github.com/ariebrainware/book-my-advocate/middleware"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name             string  `json:"name" binding:"required" example:"Jane Doe"`
	Email            string  `json:"email" binding:"required,email" example:"jane@example.com"`
	Password         string  `json:"password" binding:"required,min=6" example:"secret123"`
	Phone            string  `json:"phone" example:"9876543210"`
	Role             string  `json:"role" example:"advocate"`
	Specialization   string  `json:"specialization" example:"Family Law"`
	ExperienceYears  int     `json:"experience_years" binding:"gte=0" example:"8"`
	BarCouncilNumber string  `json:"bar_council_number" example:"D/1234/2015"`
	LicenseNumber    string  `json:"license_number" example:"LIC-5521"`
	Location         string  `json:"location" example:"New Delhi"`
	Bio              string  `json:"bio" example:"Practising family law for eight years"`
	HourlyRate       float64 `json:"hourly_rate" binding:"gte=0" example:"500"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// AccountResponse describes the caller's account; Advocate is set for
// advocate accounts only.
type AccountResponse struct {
	User     model.User      `json:"user"`
	Advocate *model.Advocate `json:"advocate,omitempty"`
}

type AuthResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expires_at"`
	AccountResponse
}

type clientInfo struct {
	IP    string
	Agent string
}

func clientInfoFrom(c *gin.Context) clientInfo {
	return clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
}

// registrationRole maps the requested role; only user and advocate may sign up.
func registrationRole(raw string) (model.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return model.RoleUser, nil
	}
	role, err := model.ParseRole(raw)
	if err != nil {
		return "", err
	}
	if role == model.RoleAdmin {
		return "", fmt.Errorf("%w: admin accounts cannot be registered", model.ErrInvalidRole)
	}
	return role, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// createAccount stores the user and, for advocates, an initial profile in one
// transaction.
func createAccount(db *gorm.DB, user *model.User, req RegisterRequest) (*model.Advocate, error) {
	var advocate *model.Advocate
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrEmailAlreadyRegistered
		}
		if err := tx.Create(user).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("create user: %w", err)
		}
		if user.Role != model.RoleAdvocate {
			return nil
		}

		advocate = &model.Advocate{
			UserID:           user.ID,
			Specialization:   strings.TrimSpace(req.Specialization),
			ExperienceYears:  req.ExperienceYears,
			BarCouncilNumber: optionalString(req.BarCouncilNumber),
			LicenseNumber:    strings.TrimSpace(req.LicenseNumber),
			Location:         strings.TrimSpace(req.Location),
			Bio:              req.Bio,
			HourlyRate:       req.HourlyRate,
		}
		if err := tx.Create(advocate).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrBarCouncilTaken
			}
			return fmt.Errorf("create advocate profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return advocate, nil
}

// issueSession signs a token for user, records the session row and caches
// it in Redis when available.
func issueSession(c *gin.Context, db *gorm.DB, user model.User, ci clientInfo) (string, time.Time, error) {
	token, expiresAt, err := util.SignToken(user.ID, user.Role, config.LoadConfig().JWTTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	session := model.Session{
		UserID:       user.ID,
		SessionToken: token,
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
		ExpiresAt:    expiresAt,
	}
	if err := db.Create(&session).Error; err != nil {
		return "", time.Time{}, fmt.Errorf("record session: %w", err)
	}
	if err := util.CacheSession(c.Request.Context(), token, user.ID, user.Role, time.Until(expiresAt)); err != nil {
		util.Logger(c).Warn().Err(err).Uint("user_id", user.ID).Msg("failed to cache session")
	}
	return token, expiresAt, nil
}

// Register godoc
// @Summary      Register account
// @Description  Create a user or advocate account and return a bearer token. Advocates get an initial profile.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=AuthResponse} "Registration successful"
// @Failure      400 {object} util.APIResponse "Invalid request, role or duplicate email"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/register [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	role, err := registrationRole(req.Role)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid role", Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return
	}

	user := model.User{
		Name:     util.NormalizeName(req.Name),
		Email:    util.NormalizeEmail(req.Email),
		Password: hashed,
		Phone:    strings.TrimSpace(req.Phone),
		Role:     role,
	}
	advocate, err := createAccount(db, &user, req)
	switch {
	case errors.Is(err, ErrEmailAlreadyRegistered):
		util.CallUserError(c, util.APIErrorParams{Msg: "Email already registered", Err: err})
		return
	case errors.Is(err, ErrBarCouncilTaken):
		util.CallUserError(c, util.APIErrorParams{Msg: "Bar council number already registered", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create account", Err: err})
		return
	}

	ci := clientInfoFrom(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventSignupSuccess,
		UserID:    fmt.Sprintf("%d", user.ID),
		Email:     user.Email,
		IP:        ci.IP,
		UserAgent: ci.Agent,
		Message:   fmt.Sprintf("User signed up as %s", user.Role),
	})

	token, expiresAt, err := issueSession(c, db, user, ci)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.CallCreated(c, util.APISuccessParams{
		Msg: "Registration successful",
		Data: AuthResponse{
			Token:           token,
			ExpiresAt:       expiresAt,
			AccountResponse: AccountResponse{User: user, Advocate: advocate},
		},
	})
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password and receive a bearer token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=AuthResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid email or password"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfoFrom(c)
	email := util.NormalizeEmail(req.Email)

	var user model.User
	err := db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "user not found")
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid email or password")})
		return
	}
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "database error")
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	match, err := util.VerifyPassword(req.Password, user.Password)
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "password verification error")
		util.CallServerError(c, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return
	}
	if !match {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "invalid password")
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid email or password")})
		return
	}

	account, err := loadAccount(db, user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load account", Err: err})
		return
	}

	token, expiresAt, err := issueSession(c, db, user, ci)
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "session creation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.UserEmailCacheSet(user.ID, user.Email)
	util.LogLoginSuccess(user.ID, user.Email, ci.IP, ci.Agent)
	if err := middleware.ResetRateLimit(c.Request.Context(), ci.IP, c.Request.URL.Path); err != nil {
		util.Logger(c).Warn().Err(err).Msg("failed to reset login rate limit")
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: AuthResponse{Token: token, ExpiresAt: expiresAt, AccountResponse: account},
	})
}

// loadAccount attaches the advocate profile to an advocate account.
func loadAccount(db *gorm.DB, user model.User) (AccountResponse, error) {
	account := AccountResponse{User: user}
	if user.Role != model.RoleAdvocate {
		return account, nil
	}
	advocate, err := findAdvocateByUser(db, user.ID)
	if errors.Is(err, ErrAdvocateProfileMissing) {
		return account, nil
	}
	if err != nil {
		return account, err
	}
	account.Advocate = &advocate
	return account, nil
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the bearer token of the current session
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	token := middleware.GetToken(c)
	if err := db.Where("session_token = ?", token).Delete(&model.Session{}).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}
	if err := util.DeleteSession(c.Request.Context(), userID, token); err != nil {
		util.Logger(c).Warn().Err(err).Uint("user_id", userID).Msg("failed to drop cached session")
	}

	util.LogLogout(userID, util.GetUserEmail(db, userID), c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}

// Me godoc
// @Summary      Current account
// @Description  Return the authenticated account and, for advocates, the profile
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=AccountResponse} "Account retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/me [get]
func Me(c *gin.Context) {
	userID, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	account, err := loadAccount(db, user)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load account", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Account retrieved", Data: account})
}
