package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/podpub/pkg/podpub"
	"github.com/castforge/podpub/pkg/podpub/storage/fs"
)

func newTestBackend(t *testing.T) (*fs.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{BaseDir: dir, BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	return backend, dir
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	backend, dir := newTestBackend(t)

	err := backend.Upload(ctx, strings.NewReader("audio bytes"), podpub.UploadParams{
		ObjectKey: "tech-talk/episodes/tech-talk-s1e1.mp3",
		MimeType:  "audio/mpeg",
	})
	require.NoError(t, err)

	body, err := backend.Download(ctx, "tech-talk/episodes/tech-talk-s1e1.mp3")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))

	// Objects live under the base directory at their key path.
	_, err = os.Stat(filepath.Join(dir, "tech-talk", "episodes", "tech-talk-s1e1.mp3"))
	assert.NoError(t, err)

	_, err = backend.Download(ctx, "tech-talk/episodes/missing.mp3")
	assert.ErrorIs(t, err, podpub.ErrObjectNotFound)
}

func TestUploadOverwrites(t *testing.T) {
	ctx := context.Background()
	backend, _ := newTestBackend(t)

	params := podpub.UploadParams{ObjectKey: "tech-talk/feed.xml", MimeType: "application/rss+xml"}
	require.NoError(t, backend.Upload(ctx, strings.NewReader("first"), params))
	require.NoError(t, backend.Upload(ctx, strings.NewReader("second"), params))

	body, err := backend.Download(ctx, "tech-talk/feed.xml")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	backend, _ := newTestBackend(t)

	exists, err := backend.Exists(ctx, "tech-talk/feed.xml")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Upload(ctx, strings.NewReader("doc"), podpub.UploadParams{
		ObjectKey: "tech-talk/feed.xml",
	}))

	exists, err = backend.Exists(ctx, "tech-talk/feed.xml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPublicURL(t *testing.T) {
	backend, _ := newTestBackend(t)
	assert.Equal(t, "http://localhost:8080/tech-talk/feed.xml", backend.PublicURL("tech-talk/feed.xml"))
}

func TestRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	backend, _ := newTestBackend(t)

	for _, key := range []string{"../outside", "/etc/passwd", "a/../../outside", "."} {
		err := backend.Upload(ctx, strings.NewReader("x"), podpub.UploadParams{ObjectKey: key})
		assert.Error(t, err, "key %q must be rejected", key)
	}
}

func TestRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{BaseURL: "http://localhost:8080"})
	assert.Error(t, err)
}
