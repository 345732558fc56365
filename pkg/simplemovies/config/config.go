// Package config loads and validates server configuration from the process
// environment and assembles a simplemovies.Service from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/tendant/simple-movies/pkg/simplemovies"
	memoryrepo "github.com/tendant/simple-movies/pkg/simplemovies/repo/memory"
	mongorepo "github.com/tendant/simple-movies/pkg/simplemovies/repo/mongo"
	fsstorage "github.com/tendant/simple-movies/pkg/simplemovies/storage/fs"
	memorystorage "github.com/tendant/simple-movies/pkg/simplemovies/storage/memory"
	s3storage "github.com/tendant/simple-movies/pkg/simplemovies/storage/s3"
)

// ServerConfig represents server configuration for the simple-movies service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseType  string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "mongo"
	MongoURL      string `env:"MONGO_URL"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"simplemovies"`

	// Storage configuration
	StorageType string `env:"STORAGE_TYPE" env-default:"memory"` // "memory", "fs", "s3"
	S3          S3Config
	FS          FSConfig

	// Admin identity and token issuing
	JWTSecret         string        `env:"JWT_SECRET"`
	AdminUsername     string        `env:"ADMIN_USERNAME"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	AdminTokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" env-default:"2h"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"524288000"` // 500MB
}

// S3Config holds the object-storage settings.
type S3Config struct {
	Region          string `env:"AWS_REGION" env-default:"us-east-1"`
	Bucket          string `env:"AWS_BUCKET_NAME"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PresignDuration int    `env:"S3_PRESIGN_DURATION" env-default:"3600"`
	CreateBucket    bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`
}

// FSConfig holds the local-directory storage settings.
type FSConfig struct {
	BaseDir   string `env:"FS_BASE_DIR"`
	URLPrefix string `env:"FS_URL_PREFIX"`
	SignTTL   int    `env:"FS_SIGN_TTL" env-default:"3600"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "mongo" {
		return errors.New(`database_type must be "memory" or "mongo"`)
	}
	if c.DatabaseType == "mongo" && c.MongoURL == "" {
		return errors.New("MONGO_URL is required when using mongo")
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.FS.BaseDir == "" {
			return errors.New("FS_BASE_DIR is required when using fs")
		}
		if c.FS.URLPrefix == "" {
			return errors.New("FS_URL_PREFIX is required when using fs")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("AWS_BUCKET_NAME is required when using s3")
		}
	default:
		return errors.New(`storage_type must be "memory", "fs" or "s3"`)
	}

	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}
	if c.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if !strings.HasPrefix(c.AdminPasswordHash, "$2") {
		return errors.New("ADMIN_PASSWORD_HASH must be a bcrypt hash")
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in a hardened configuration;
// error responses then carry no internal detail.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// BuildService creates a Service instance from the server configuration. The
// returned shutdown function releases database connections; it is safe to
// call when nil checks are inconvenient.
func (c *ServerConfig) BuildService(ctx context.Context) (simplemovies.Service, func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	var repo simplemovies.Repository
	switch c.DatabaseType {
	case "mongo":
		mongoRepo, client, err := mongorepo.Connect(ctx, c.MongoURL, c.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		repo = mongoRepo
		shutdown = client.Disconnect
	default:
		repo = memoryrepo.New()
	}

	var store simplemovies.BlobStore
	switch c.StorageType {
	case "s3":
		backend, err := s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PresignDuration:        c.S3.PresignDuration,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
		if err != nil {
			return nil, nil, err
		}
		store = backend
	case "fs":
		backend, err := fsstorage.New(fsstorage.Config{
			BaseDir:   c.FS.BaseDir,
			URLPrefix: c.FS.URLPrefix,
			SignTTL:   c.FS.SignTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		store = backend
	default:
		store = memorystorage.New()
	}

	svc, err := simplemovies.New(
		simplemovies.WithRepository(repo),
		simplemovies.WithBlobStore(store),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, shutdown, nil
}
