// Package memory provides an in-memory BlobStore implementation, used by
// tests and local development.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultSignTTL = time.Hour

// Backend is an in-memory implementation of the simplemovies.BlobStore
// interface. Signed URLs embed a fresh nonce and an expiry timestamp on every
// call, so callers can observe that URLs are re-derived per request.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	mimeTypes map[string]string
	signTTL   time.Duration
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
		signTTL:   defaultSignTTL,
	}
}

// Upload stores content in memory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	b.mimeTypes[objectKey] = mimeType
	return nil
}

// GetDownloadURL returns a synthetic signed URL for a stored object. Signing
// fails for keys that were never uploaded, which mirrors how a real backend
// rejects malformed or dangling keys.
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, exists := b.objects[objectKey]; !exists {
		return "", errors.New("object not found")
	}

	expires := time.Now().Add(b.signTTL).Unix()
	return fmt.Sprintf("https://storage.local/%s?token=%s&expires=%d", objectKey, uuid.NewString(), expires), nil
}

// Delete removes a stored object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return errors.New("object not found")
	}
	delete(b.objects, objectKey)
	delete(b.mimeTypes, objectKey)
	return nil
}

// Has reports whether an object exists, for tests.
func (b *Backend) Has(objectKey string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.objects[objectKey]
	return exists
}
