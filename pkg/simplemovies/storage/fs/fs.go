// Package fs provides a BlobStore backed by a local directory. It suits
// single-node deployments where an S3-compatible service is not available;
// download URLs are served by whatever static file server fronts the base
// directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultSignTTL = time.Hour

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix under which the base directory is served
	SignTTL   int    // Duration in seconds for generated URLs (default: 3600)
}

// Backend is a filesystem implementation of the simplemovies.BlobStore
// interface. URLs carry a per-call token and expiry so reads behave like the
// presigning backends.
type Backend struct {
	baseDir   string
	urlPrefix string
	signTTL   time.Duration
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.URLPrefix == "" {
		return nil, errors.New("url prefix is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	signTTL := defaultSignTTL
	if config.SignTTL > 0 {
		signTTL = time.Duration(config.SignTTL) * time.Second
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
		signTTL:   signTTL,
	}, nil
}

// Upload writes content to a file under the base directory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error {
	filePath, err := b.safePath(objectKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// GetDownloadURL returns a URL for a stored object. It fails for keys with no
// file behind them, matching the presigning backends.
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string) (string, error) {
	filePath, err := b.safePath(objectKey)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("object not found")
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	expires := time.Now().Add(b.signTTL).Unix()
	return fmt.Sprintf("%s/%s?token=%s&expires=%d", b.urlPrefix, objectKey, uuid.NewString(), expires), nil
}

// Delete removes a stored object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.safePath(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// safePath resolves an object key inside the base directory and rejects keys
// that would escape it.
func (b *Backend) safePath(objectKey string) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(b.baseDir, cleaned), nil
}
