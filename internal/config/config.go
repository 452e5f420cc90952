package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	UploadPath     string // Base path for uploaded bootcamp photos
	MaxUploadBytes int64
	JWTSecret      string
	JWTExpire      time.Duration
	GeocoderURL    string
	SweepSchedule  string // Cron cadence for purging expired tokens
	AllowedOrigin  string
	Env            string // "development" or "production"
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_FILE_UPLOAD", "1000000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_UPLOAD: %w", err)
	}

	expire, err := ParseExpiry(getEnv("JWT_EXPIRE", "30d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./devtrail.db"),
		UploadPath:     getEnv("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxUploadBytes: maxUpload,
		JWTSecret:      secret,
		JWTExpire:      expire,
		GeocoderURL:    getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		SweepSchedule:  getEnv("TOKEN_SWEEP_SCHEDULE", "*/10 * * * *"),
		AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		Env:            getEnv("APP_ENV", "development"),
	}, nil
}

// ParseExpiry parses a duration string, additionally accepting a "30d" style
// day suffix which time.ParseDuration does not understand.
func ParseExpiry(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
