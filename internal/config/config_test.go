package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/profile-client/internal/config"
)

var keys = []string{
	"PORT", "API_BASE_URL", "API_COOKIES", "CSRF_COOKIE_NAME", "HTTP_TIMEOUT",
	"LOG_LEVEL", "ALLOWED_ORIGINS", "SUBSCRIBER_BUFFER",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Empty(t, cfg.APICookies)
	assert.Equal(t, "csrftoken", cfg.CSRFCookieName)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 16, cfg.SubscriberBuffer)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_COOKIES", "csrftoken=abc; sessionid=xyz")
	t.Setenv("CSRF_COOKIE_NAME", "XSRF-TOKEN")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("SUBSCRIBER_BUFFER", "4")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "csrftoken=abc; sessionid=xyz", cfg.APICookies)
	assert.Equal(t, "XSRF-TOKEN", cfg.CSRFCookieName)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.SubscriberBuffer)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad url", "API_BASE_URL", "not a url"},
		{"bad port", "PORT", "http"},
		{"bad timeout", "HTTP_TIMEOUT", "soon"},
		{"bad level", "LOG_LEVEL", "verbose"},
		{"bad buffer", "SUBSCRIBER_BUFFER", "many"},
		{"zero buffer", "SUBSCRIBER_BUFFER", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// .env never overrides variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("PORT"))
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nLOG_LEVEL=warn\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
