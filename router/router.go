package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/book-my-advocate/config"
	_ "github.com/ariebrainware/book-my-advocate/docs"
	"github.com/ariebrainware/book-my-advocate/endpoint"
	"github.com/ariebrainware/book-my-advocate/metrics"
	"github.com/ariebrainware/book-my-advocate/middleware"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// New assembles the HTTP surface: the shared middleware chain, the
// operational routes and the /api groups behind their role gates.
func New(db *gorm.DB, cfg *config.Config, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.EndpointCallLogger())
	r.Use(middleware.DatabaseMiddleware(db))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	r.GET("/healthz", healthz)
	if cfg.MetricsEnabled {
		metrics.Register()
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if cfg.GinMode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := middleware.ValidateLoginToken()
	asUser := middleware.RequireRole(model.RoleUser)
	asAdvocate := middleware.RequireRole(model.RoleAdvocate)
	limited := middleware.RateLimiter(middleware.RateLimitConfig{
		Limit:  cfg.RateLimit,
		Window: cfg.RateLimitWindow,
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", limited, endpoint.Register)
		auth.POST("/login", limited, endpoint.Login)
		auth.POST("/logout", authed, endpoint.Logout)
		auth.GET("/me", authed, endpoint.Me)
	}

	advocates := api.Group("/advocates")
	{
		advocates.GET("", endpoint.SearchAdvocates)
		advocates.GET("/:id", endpoint.GetAdvocate)
		advocates.GET("/me/profile", authed, asAdvocate, endpoint.GetMyProfile)
		advocates.PUT("/profile", authed, asAdvocate, endpoint.UpdateProfile)
		advocates.PATCH("/availability", authed, asAdvocate, endpoint.UpdateAvailability)
	}

	services := api.Group("/services")
	{
		services.GET("/advocate/:advocateId", endpoint.ListAdvocateServices)
		services.GET("/my-services", authed, asAdvocate, endpoint.ListMyServices)
		services.POST("", authed, asAdvocate, endpoint.CreateService)
		services.PUT("/:id", authed, asAdvocate, endpoint.UpdateService)
		services.DELETE("/:id", authed, asAdvocate, endpoint.DeleteService)
	}

	bookings := api.Group("/bookings", authed)
	{
		bookings.POST("", asUser, endpoint.CreateBooking)
		bookings.GET("/my-bookings", asUser, endpoint.ListMyBookings)
		bookings.GET("/advocate-bookings", asAdvocate, endpoint.ListAdvocateBookings)
		bookings.GET("/:id", endpoint.GetBooking)
		bookings.PATCH("/:id/status", asAdvocate, endpoint.UpdateBookingStatus)
		bookings.PATCH("/:id/cancel", asUser, endpoint.CancelBooking)
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("", authed, asUser, endpoint.CreateReview)
		reviews.GET("/advocate/:advocateId", endpoint.ListAdvocateReviews)
	}

	admin := api.Group("/admin", authed, middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/dashboard", endpoint.Dashboard)
		admin.GET("/users", endpoint.ListUsers)
		admin.DELETE("/users/:id", endpoint.DeleteUser)
		admin.GET("/advocates", endpoint.ListAdvocates)
		admin.PATCH("/advocates/:id/verify", endpoint.VerifyAdvocate)
		admin.GET("/bookings", endpoint.ListBookings)
		admin.GET("/bookings/export", endpoint.ExportBookings)
		admin.GET("/security-logs", endpoint.ListSecurityLogs)
	}

	return r
}

// healthz reports whether the database answers a ping.
func healthz(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database unavailable", Err: err})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, util.APIResponse{
			Success: false,
			Error:   "database unreachable",
			Msg:     "Service unavailable",
			Data:    map[string]interface{}{},
		})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "ok", Data: map[string]string{"database": "up"}})
}
