// Package config loads runtime settings from the environment, with an
// optional .env file for development setups.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	Addr       string
	SQLitePath string
	LogPath    string
	AdminUser  string

	// Reminder cron settings.
	ReminderHour int    // local hour of the daily reminder run
	TimeZone     string // IANA zone the reminder schedule runs in

	// SMTP transport. An empty host disables real sending and falls
	// back to the logging mailer.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Event-search proxy. Empty disables lookups.
	EventProxyURL string
}

// Load reads the configuration from the environment. A .env file in
// the working directory is loaded first if present.
func Load() *Config {
	// The .env file is optional, real environments set variables directly.
	godotenv.Load()

	return &Config{
		Addr:       getEnv("ADDR", ":8080"),
		SQLitePath: getEnv("SQLITE_PATH", "mobiliario.sqlite3"),
		LogPath:    getEnv("LOG_PATH", ""),
		AdminUser:  getEnv("ADMIN_USER", "admin"),

		ReminderHour: getEnvAsInt("REMINDER_HOUR", 7),
		TimeZone:     getEnv("TIMEZONE", "America/Mexico_City"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		EventProxyURL: getEnv("EVENT_PROXY_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
