package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`
	DBHost  string `json:"dbhost"`
	DBPort  uint16 `json:"dbport"`
	DBName  string `json:"dbname"`
	DBUSER  string `json:"dbuser"`
	DBPass  string `json:"dbpass"`

	JWTSecret string        `json:"-"`
	JWTTTL    time.Duration `json:"jwt_ttl"`

	CORSOrigins []string `json:"cors_origins"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogOutput string `json:"log_output"`

	MetricsEnabled  bool          `json:"metrics_enabled"`
	RateLimit       int           `json:"rate_limit"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	GeoIPDBPath     string        `json:"geoip_db_path"`

	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"-"`
}

// IsTest reports whether the application runs against the in-memory test store.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
// A missing .env file is not an error; the process environment is used as is.
func LoadConfig() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		appPort, _ := strconv.ParseUint(getEnv("APPPORT", "5000"), 10, 16)
		dbPort, _ := strconv.ParseUint(getEnv("DBPORT", "3306"), 10, 16)

		config = &Config{
			AppName: getEnv("APPNAME", "BookMyAdvocate"),
			AppEnv:  getEnv("APPENV", "development"),
			AppPort: uint16(appPort),
			GinMode: getEnv("GINMODE", "debug"),
			DBHost:  getEnv("DBHOST", "localhost"),
			DBPort:  uint16(dbPort),
			DBName:  getEnv("DBNAME", "bookmyadvocate"),
			DBUSER:  getEnv("DBUSER", "root"),
			DBPass:  os.Getenv("DBPASS"),

			JWTSecret: os.Getenv("JWTSECRET"),
			JWTTTL:    getDuration("JWT_TTL", 7*24*time.Hour),

			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "console"),
			LogOutput: getEnv("LOG_OUTPUT", "stdout"),

			MetricsEnabled:  getBool("METRICS_ENABLED", true),
			RateLimit:       getInt("RATE_LIMIT", 20),
			RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			GeoIPDBPath:     os.Getenv("GEOIP_DB_PATH"),

			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@bookmyadvocate.com"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		}
	})
	return config
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// With APPENV=test it opens a private in-memory SQLite database instead.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}

	if os.Getenv("APPENV") == "test" || cfg.IsTest() {
		dsn := fmt.Sprintf("file:bma_%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	// clientFoundRows makes RowsAffected count matched rows, so an update that
	// writes an unchanged value is not mistaken for a missing row.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		cfg.DBUSER, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
