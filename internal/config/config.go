package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server.
type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	SweepInterval time.Duration
	TelegramToken string
	GeminiAPIKey  string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment (and a .env file when
// present) with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "taskmanager.db"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SweepInterval: parseSeconds(os.Getenv("SWEEP_INTERVAL_SECONDS"), 60*time.Second),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseSeconds(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
