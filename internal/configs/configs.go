package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RateLimit              int
	RedisAddr              string
	RedisChannelPrefix     string
	JWTSecret              string
	ReviewRequired         bool
	ConfirmTimeout         time.Duration
	PollInterval           time.Duration
	SettleDelay            time.Duration
	ShutdownTimeoutSeconds int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "crewsync.db"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisChannelPrefix:     getEnv("REDIS_CHANNEL_PREFIX", "crewsync"),
		JWTSecret:              getEnv("JWT_SECRET_KEY", ""),
		ReviewRequired:         getEnvAsBool("REVIEW_REQUIRED", false),
		ConfirmTimeout:         time.Duration(getEnvAsInt("REALTIME_CONFIRM_TIMEOUT_SECONDS", 5)) * time.Second,
		PollInterval:           time.Duration(getEnvAsInt("REALTIME_POLL_INTERVAL_MS", 1500)) * time.Millisecond,
		SettleDelay:            time.Duration(getEnvAsInt("NOTIFY_SETTLE_DELAY_MS", 1000)) * time.Millisecond,
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must not be empty")
	}
	if cfg.ConfirmTimeout <= 0 {
		log.Fatal("REALTIME_CONFIRM_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.PollInterval <= 0 {
		log.Fatal("REALTIME_POLL_INTERVAL_MS must be greater than 0")
	}
	if cfg.SettleDelay < 0 {
		log.Fatal("NOTIFY_SETTLE_DELAY_MS must not be negative")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("invalid boolean value for %s", key)
		}
		return b
	}
	return defaultVal
}
