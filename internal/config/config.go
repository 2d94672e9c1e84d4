package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the client configuration loaded from environment variables.
type Config struct {
	Port             string `validate:"required,numeric"`
	APIBaseURL       string `validate:"required,url"`
	APICookies       string // seed Cookie header, e.g. "csrftoken=...; sessionid=..."
	CSRFCookieName   string `validate:"required"`
	HTTPTimeout      time.Duration
	LogLevel         string `validate:"oneof=trace debug info warn error"`
	AllowedOrigins   []string
	SubscriberBuffer int `validate:"gte=1"`
}

// Load reads an optional .env file at envFile, then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	timeout, err := time.ParseDuration(getenv("HTTP_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	buffer, err := strconv.Atoi(getenv("SUBSCRIBER_BUFFER", "16"))
	if err != nil {
		return nil, fmt.Errorf("SUBSCRIBER_BUFFER: %w", err)
	}

	cfg := &Config{
		Port:             getenv("PORT", "8090"),
		APIBaseURL:       getenv("API_BASE_URL", "http://localhost:8000"),
		APICookies:       getenv("API_COOKIES", ""),
		CSRFCookieName:   getenv("CSRF_COOKIE_NAME", "csrftoken"),
		HTTPTimeout:      timeout,
		LogLevel:         strings.ToLower(getenv("LOG_LEVEL", "info")),
		AllowedOrigins:   splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
		SubscriberBuffer: buffer,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
