package config

import (
	"log/slog"
	"os"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port string
	Env  string

	MongoURI string
	MongoDB  string

	JWTSecret string
	JWTExpiry time.Duration

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string
}

const devSecret = "dev-secret-change-in-production"

// Load reads the configuration from the environment, falling back to
// development defaults where a variable is unset.
func Load() Config {
	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "natours"),
		JWTSecret: getEnv("JWT_SECRET", devSecret),
		JWTExpiry: getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  getEnv("SMTP_PORT", "587"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: getEnv("EMAIL_FROM", "Natours <admin@natours.io>"),
	}

	if cfg.Env == "production" && cfg.JWTSecret == devSecret {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration in env, using fallback", "key", key, "fallback", fallback)
	}
	return fallback
}
