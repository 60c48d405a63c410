package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET         string
	JWT_ISSUER         string
	JWT_EXPIRY         time.Duration
	JWT_REFRESH_EXPIRY time.Duration
	// Redis Configuration
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	// Chat engine
	CHAT_LATENCY_MIN        time.Duration
	CHAT_LATENCY_MAX        time.Duration
	CHAT_RESOLVE_TIMEOUT    time.Duration
	CHAT_IDLE_TTL           time.Duration
	CRON_ENABLED            bool
	CRON_LOG_RETENTION_DAYS int
	// Logging
	LOG_DIR string
}

func Get() (*EnviornmentVariable, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	latencyMin := durationMS("CHAT_LATENCY_MIN_MS", 1000)
	latencyMax := durationMS("CHAT_LATENCY_MAX_MS", 2000)
	if latencyMin > latencyMax {
		return nil, errors.New("CHAT_LATENCY_MIN_MS must not exceed CHAT_LATENCY_MAX_MS")
	}
	// 0 disables the timeout.
	resolveTimeout := durationMS("CHAT_RESOLVE_TIMEOUT_MS", 10000)
	if resolveTimeout > 0 && resolveTimeout <= latencyMax {
		return nil, errors.New("CHAT_RESOLVE_TIMEOUT_MS must exceed CHAT_LATENCY_MAX_MS")
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      stringOr("DB_HOST", "localhost"),
		DB_PORT:      stringOr("DB_PORT", "5432"),
		DB_SSL_MODE:  stringOr("DB_SSL_MODE", "disable"),
		PORT:         port,
		// JWT
		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		JWT_ISSUER:         stringOr("JWT_ISSUER", "smart-campus"),
		JWT_EXPIRY:         time.Duration(intOr("JWT_EXPIRY_MINUTES", 24*60)) * time.Minute,
		JWT_REFRESH_EXPIRY: time.Duration(intOr("JWT_REFRESH_EXPIRY_HOURS", 7*24)) * time.Hour,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// HTTP
		ALLOWED_ORIGINS:     stringOr("ALLOWED_ORIGINS", "http://localhost:5173"),
		RATE_LIMIT_REQUESTS: intOr("RATE_LIMIT_REQUESTS", 120),
		// Chat engine
		CHAT_LATENCY_MIN:        latencyMin,
		CHAT_LATENCY_MAX:        latencyMax,
		CHAT_RESOLVE_TIMEOUT:    resolveTimeout,
		CHAT_IDLE_TTL:           time.Duration(intOr("CHAT_IDLE_TTL_MINUTES", 120)) * time.Minute,
		CRON_ENABLED:            boolOr("CRON_ENABLED", true),
		CRON_LOG_RETENTION_DAYS: intOr("CRON_LOG_RETENTION_DAYS", 30),
		// Logging
		LOG_DIR: stringOr("LOG_DIR", "./logs"),
	}

	if envVariables.GO_ENV == "production" && envVariables.JWT_SECRET == "" {
		return nil, errors.New("JWT_SECRET is required in production")
	}

	return envVariables, nil
}

func stringOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func boolOr(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func durationMS(key string, fallback int) time.Duration {
	return time.Duration(intOr(key, fallback)) * time.Millisecond
}
