// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full server configuration.
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// StagingDir is where uploads are buffered before going to storage.
	StagingDir string `env:"STAGING_DIR" env-default:"./data/staging"`

	// JWTSecret signs the admin tokens guarding mutating routes.
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret"`

	// DatabaseType selects the metadata store: "memory" or "postgres".
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"`
	DB           DbConfig

	// StorageType selects the object store: "memory", "fs" or "s3".
	StorageType string `env:"STORAGE_TYPE" env-default:"fs"`
	FS          FsConfig
	S3          S3Config
}

// DbConfig holds postgres connection settings.
type DbConfig struct {
	Port     uint16 `env:"SALON_PG_PORT" env-default:"5432"`
	Host     string `env:"SALON_PG_HOST" env-default:"localhost"`
	Name     string `env:"SALON_PG_NAME" env-default:"salon_db"`
	User     string `env:"SALON_PG_USER" env-default:"salon"`
	Password string `env:"SALON_PG_PASSWORD" env-default:"pwd"`
}

// DatabaseURL renders the postgres connection string.
func (c DbConfig) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

// FsConfig holds filesystem object store settings.
type FsConfig struct {
	BaseDir   string `env:"FS_BASE_DIR" env-default:"./data/storage"`
	URLPrefix string `env:"FS_URL_PREFIX" env-default:"/uploads"`
}

// S3Config holds S3 object store settings.
type S3Config struct {
	Endpoint               string `env:"AWS_S3_ENDPOINT" env-default:""`
	AccessKeyID            string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey        string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Bucket                 string `env:"AWS_S3_BUCKET" env-default:""`
	Region                 string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle           bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PublicBaseURL          string `env:"AWS_S3_PUBLIC_BASE_URL" env-default:""`
	CreateBucketIfNotExist bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for unusable combinations.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory", "postgres":
	default:
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	switch c.StorageType {
	case "memory", "fs":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required when using s3 storage")
		}
	default:
		return errors.New("storage_type must be 'memory', 'fs' or 's3'")
	}

	if c.Environment == "production" && c.JWTSecret == "dev-secret" {
		return errors.New("JWT_SECRET must be set in production")
	}

	return nil
}
