package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "fs", cfg.StorageType)
	assert.Equal(t, "./data/staging", cfg.StagingDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("SALON_PG_HOST", "db.internal")
	t.Setenv("SALON_PG_NAME", "salon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Contains(t, cfg.DB.DatabaseURL(), "db.internal:5432")
	assert.Contains(t, cfg.DB.DatabaseURL(), "/salon")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:         "8080",
			Environment:  "development",
			JWTSecret:    "dev-secret",
			DatabaseType: "memory",
			StorageType:  "memory",
		}
	}

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseType = "mongo"
		require.Error(t, cfg.Validate())
	})

	t.Run("unknown storage type", func(t *testing.T) {
		cfg := base()
		cfg.StorageType = "gcs"
		require.Error(t, cfg.Validate())
	})

	t.Run("s3 requires a bucket", func(t *testing.T) {
		cfg := base()
		cfg.StorageType = "s3"
		require.Error(t, cfg.Validate())

		cfg.S3.Bucket = "salon-media"
		require.NoError(t, cfg.Validate())
	})

	t.Run("production refuses the default secret", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		require.Error(t, cfg.Validate())

		cfg.JWTSecret = "long-random-secret"
		require.NoError(t, cfg.Validate())
	})
}

func TestDatabaseURLEncodesCredentials(t *testing.T) {
	db := DbConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "salon_db",
		User:     "salon",
		Password: "p@ss/word",
	}
	url := db.DatabaseURL()
	assert.Contains(t, url, "postgres://")
	assert.NotContains(t, url, "p@ss/word", "credentials should be URL-encoded")
}
