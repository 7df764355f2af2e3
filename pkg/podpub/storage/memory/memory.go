// Package memory provides an in-memory podpub.BlobStore for tests and
// local experimentation.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/castforge/podpub/pkg/podpub"
)

// Backend stores objects in a map. PublicURL prepends the configured base
// URL so rendered documents carry plausible absolute URLs.
type Backend struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
	types   map[string]string
}

// New creates an in-memory backend. baseURL is the public URL prefix, e.g.
// "https://cdn.example.com".
func New(baseURL string) *Backend {
	return &Backend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (b *Backend) Upload(ctx context.Context, reader io.Reader, params podpub.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[params.ObjectKey] = data
	b.types[params.ObjectKey] = params.MimeType
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, fmt.Errorf("object %q: %w", objectKey, podpub.ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.objects[objectKey]
	return exists, nil
}

func (b *Backend) PublicURL(objectKey string) string {
	return b.baseURL + "/" + objectKey
}

// ContentType returns the declared MIME type of a stored object.
func (b *Backend) ContentType(objectKey string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.types[objectKey]
}
