package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: memory\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("PORT", "5050")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("EXPRESS_SESSION_SECRET", "legacy-session")
	t.Setenv("EMAIL_USER", "clinic@example.com")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, "legacy-session", cfg.SessionSecret)
	assert.Equal(t, "clinic@example.com", cfg.Email.From)
	assert.Equal(t, "clinic@example.com", cfg.Email.SupportEmail)
	assert.Equal(t, []string{"10:00", "12:00", "14:00", "16:00"}, cfg.DefaultSlots)
	assert.Equal(t, 365*24*time.Hour, cfg.TokenExpiry())
	assert.Equal(t, 5*time.Minute, cfg.Jobs.ReminderTTL)
	assert.Equal(t, 30*time.Second, cfg.Jobs.DeleteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Jobs.Retention["cancelled"])
	assert.Equal(t, time.Duration(0), cfg.Jobs.Retention["pending"])
}

func TestLoadConfigSessionSecretPrecedence(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: memory\n")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("EXPRESS_SESSION_SECRET", "legacy")
	t.Setenv("SESSION_SECRET", "current")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "current", cfg.SessionSecret)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: memory\n")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "jwt secret")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		JWT:          JWTConfig{Secret: "s"},
		Database:     DatabaseConfig{Driver: "cassandra"},
		DefaultSlots: []string{"10:00"},
	}
	assert.ErrorContains(t, cfg.Validate(), "unknown database driver")

	cfg.Database = DatabaseConfig{Driver: "postgres"}
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
}

func TestAllowedOrigins(t *testing.T) {
	c := &Config{FrontendURL: "http://localhost:5173, https://admin.example.com,,"}
	assert.Equal(t, []string{"http://localhost:5173", "https://admin.example.com"}, c.AllowedOrigins())

	c.FrontendURL = ""
	assert.Empty(t, c.AllowedOrigins())
}

func TestLoadConfigRetentionIsNotMergedWithDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: memory\njobs:\n  retention:\n    cancelled: 48h\n")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Duration{"cancelled": 48 * time.Hour}, cfg.Jobs.Retention,
		"statuses left out of the file are kept forever")
}
