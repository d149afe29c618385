package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/joho/godotenv"
)

type Config struct {
	SigningSecret string // Required: HS256 signing secret (min 32 bytes)
	Issuer        string // Optional: issuer claim for tokens (default: gatekeeper)
	Audience      string // Optional: audience claim for tokens (default: gatekeeper-api)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)
	SessionTTL      time.Duration // Optional: browser session lifetime (default: 24h)

	RedisAddr     string // Optional: Redis address (default: localhost:6379)
	RedisPassword string // Optional: Redis password
	RedisDB       int    // Optional: Redis database number (default: 0)

	DatabaseFile string // Optional: path to SQLite database file (default: ./iam.db)
	PepperFile   string // Optional: path to pepper file for password hashing (default: ./pepper)
	TOTPIssuer   string // Optional: issuer shown in authenticator apps (default: issuer)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// A local .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		SigningSecret:       os.Getenv("IAM_SIGNING_SECRET"),
		Issuer:              getEnvOrDefault("IAM_ISSUER", "gatekeeper"),
		Audience:            getEnvOrDefault("IAM_AUDIENCE", "gatekeeper-api"),
		AccessTokenTTL:      getEnvDurationOrDefault("IAM_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:     getEnvDurationOrDefault("IAM_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		SessionTTL:          getEnvDurationOrDefault("IAM_SESSION_TTL", 24*time.Hour),
		RedisAddr:           getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvIntOrDefault("REDIS_DB", 0),
		DatabaseFile:        getEnvOrDefault("IAM_DATABASE_FILE", "iam.db"),
		PepperFile:          getEnvOrDefault("IAM_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	cfg.TOTPIssuer = getEnvOrDefault("IAM_TOTP_ISSUER", cfg.Issuer)

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accepts duration syntax (e.g. "1h", "30m", "90s") or plain minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
