package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET",
	"DIRECTORY_BACKEND", "DIRECTORY_FILE", "DATABASE_URL",
	"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_DIRECTORY_KEY",
	"MESSAGE_LOG_PATH",
}

// clearEnv blanks every variable the loader reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func Test_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, BackendFile, cfg.DirectoryBackend)
	assert.Equal(t, "data/users.json", cfg.DirectoryFile)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.MessageLogPath)
}

func Test_Parses_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DIRECTORY_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://db/linkhub")
	t.Setenv("MESSAGE_LOG_PATH", "data/messages")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, BackendPostgres, cfg.DirectoryBackend)
	assert.Equal(t, "postgres://db/linkhub", cfg.DatabaseDSN)
	assert.Equal(t, "data/messages", cfg.MessageLogPath)
}

func Test_S3_Backend(t *testing.T) {
	clearEnv(t)
	t.Setenv("DIRECTORY_BACKEND", "s3")
	t.Setenv("S3_BUCKET_NAME", "linkhub")
	t.Setenv("S3_ENDPOINT", "https://s3.example")
	t.Setenv("S3_ACCESS_KEY_ID", "key")

	_, err := loadFromEnv()
	assert.ErrorContains(t, err, "S3_SECRET_ACCESS_KEY")

	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	cfg, err := loadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "directory/users.json", cfg.S3DirectoryKey)
}

func Test_Rejects_Invalid_Settings(t *testing.T) {
	cases := map[string]map[string]string{
		"port not a number":      {"PORT": "http"},
		"privileged port":        {"PORT": "80"},
		"production without jwt": {"ENVIRONMENT": "production"},
		"unknown backend":        {"DIRECTORY_BACKEND": "redis"},
		"production without dsn": {"ENVIRONMENT": "production", "JWT_SECRET": "x", "DIRECTORY_BACKEND": "postgres"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := loadFromEnv()
			assert.Error(t, err)
		})
	}
}
