// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/book-my-advocate/config"
	"github.com/ariebrainware/book-my-advocate/logging"
	"github.com/ariebrainware/book-my-advocate/model"
	"github.com/ariebrainware/book-my-advocate/router"
	"github.com/ariebrainware/book-my-advocate/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

// @title           Book My Advocate API
// @version         1.0
// @description     Marketplace API connecting clients with advocates: directory search, bookings, reviews and administration.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the session token.
func main() {
	app := &cli.App{
		Name:   "book-my-advocate",
		Usage:  "advocate booking marketplace API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the schema and seed the admin account, then exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// bootstrap loads configuration, builds the logger and opens the database
// with the schema migrated and the admin account seeded.
func bootstrap() (*config.Config, zerolog.Logger, io.Closer, *gorm.DB, error) {
	cfg := config.LoadConfig()

	logger, closer, err := logging.New(cfg)
	if err != nil {
		return nil, zerolog.Nop(), nil, nil, fmt.Errorf("init logger: %w", err)
	}
	util.SetBaseLogger(logger)
	util.SetSecurityLogger(logger.With().Str("component", "security").Logger())
	util.SetJWTSecret(cfg.JWTSecret)

	db, err := config.ConnectMySQL()
	if err != nil {
		return nil, logger, closer, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, logger, closer, nil, fmt.Errorf("migrate: %w", err)
	}
	if err := seedAdmin(db, cfg, logger); err != nil {
		return nil, logger, closer, nil, err
	}
	return cfg, logger, closer, db, nil
}

func seedAdmin(db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD unset, skipping admin seed")
		return nil
	}
	hashed, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := model.SeedAdmin(db, model.AdminSeed{
		Name:         "Admin User",
		Email:        util.NormalizeEmail(cfg.AdminEmail),
		PasswordHash: hashed,
		Phone:        "9999999999",
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info().Str("email", cfg.AdminEmail).Msg("admin account created")
	}
	return nil
}

func migrate(_ *cli.Context) error {
	_, logger, closer, _, err := bootstrap()
	if closer != nil {
		defer closer.Close()
	}
	if err != nil {
		return err
	}
	logger.Info().Msg("schema up to date")
	return nil
}

func serve(_ *cli.Context) error {
	cfg, logger, closer, db, err := bootstrap()
	if closer != nil {
		defer closer.Close()
	}
	if err != nil {
		return err
	}

	util.SetSecurityLoggerDB(db)

	if cfg.GeoIPDBPath != "" {
		if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
			logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip disabled")
		} else {
			defer util.CloseGeoIP()
		}
	}

	if rdb, err := config.ConnectRedis(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, sessions and rate limits use local state")
	} else if rdb != nil {
		defer rdb.Close()
	}

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router.New(db, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
