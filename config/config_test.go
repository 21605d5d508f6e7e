package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/highlights")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "supabase", cfg.StorageDriver)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, 10, cfg.GuestUploadsPerMinute)
	assert.False(t, cfg.StripeEnabled())
	assert.False(t, cfg.MuxEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_UnknownStorageDriver(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/highlights")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/highlights")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("MUX_TOKEN_ID", "id")
	t.Setenv("MUX_TOKEN_SECRET", "shh")
	t.Setenv("SIGNED_URL_TTL", "15m")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.SignedURLTTL)
	assert.True(t, cfg.MuxEnabled())
}
