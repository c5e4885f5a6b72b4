package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "society.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "24h"
	defaultTimezone      = "UTC"
	defaultLogLevel      = "info"
	defaultExpirySweep   = "0s"
	defaultShutdownGrace = "10s"
)

type Config struct {
	AppEnv   string
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Society  SocietyConfig
	LogLevel string
}

type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins []string
	ShutdownGrace      time.Duration
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

type SocietyConfig struct {
	// Location defines "today" for pre-approval expiry and day listings.
	Location *time.Location
	// ExpirySweepInterval materialises lazily expired pre-approvals; zero disables it.
	ExpirySweepInterval time.Duration
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTP.Addr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.HTTP.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.Database.URL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))

	var err error
	cfg.Auth.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.HTTP.ShutdownGrace, err = parseDurationEnv("SHUTDOWN_GRACE", defaultShutdownGrace)
	if err != nil {
		return nil, err
	}
	cfg.Society.ExpirySweepInterval, err = parseDurationEnv("EXPIRY_SWEEP_INTERVAL", defaultExpirySweep)
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("SOCIETY_TIMEZONE", defaultTimezone))
	cfg.Society.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SOCIETY_TIMEZONE value %q: %w", tz, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Society.ExpirySweepInterval < 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL must be >= 0")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
