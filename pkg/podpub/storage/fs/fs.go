// Package fs provides a filesystem podpub.BlobStore. Pair it with the
// httpapi server, which plays the role the bucket endpoint plays for S3.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/castforge/podpub/pkg/podpub"
)

// Config options for the filesystem backend.
type Config struct {
	BaseDir string // directory objects are written under; created if absent
	BaseURL string // public URL prefix, e.g. "http://localhost:8080"
}

// Backend stores objects as files under a base directory.
type Backend struct {
	baseDir string
	baseURL string
}

// New creates a filesystem storage backend.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &Backend{
		baseDir: config.BaseDir,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
	}, nil
}

func (b *Backend) Upload(ctx context.Context, reader io.Reader, params podpub.UploadParams) error {
	filePath, err := b.objectPath(params.ObjectKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	// Write-then-rename so a crashed upload never leaves a half-written
	// object at the public key.
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("finalize object: %w", err)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %q: %w", objectKey, podpub.ErrObjectNotFound)
		}
		return nil, err
	}
	return f, nil
}

func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	filePath, err := b.objectPath(objectKey)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (b *Backend) PublicURL(objectKey string) string {
	return b.baseURL + "/" + objectKey
}

// objectPath rejects keys that would escape the base directory.
func (b *Backend) objectPath(objectKey string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(b.baseDir, cleaned), nil
}
