package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/podpub/pkg/podpub"
	"github.com/castforge/podpub/pkg/podpub/storage/memory"
)

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	backend := memory.New("https://cdn.example.com")

	err := backend.Upload(ctx, strings.NewReader("audio bytes"), podpub.UploadParams{
		ObjectKey: "tech-talk/episodes/ep1.mp3",
		MimeType:  "audio/mpeg",
	})
	require.NoError(t, err)

	body, err := backend.Download(ctx, "tech-talk/episodes/ep1.mp3")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))
	assert.Equal(t, "audio/mpeg", backend.ContentType("tech-talk/episodes/ep1.mp3"))

	_, err = backend.Download(ctx, "missing")
	assert.ErrorIs(t, err, podpub.ErrObjectNotFound)
}

func TestExistsAndPublicURL(t *testing.T) {
	ctx := context.Background()
	backend := memory.New("https://cdn.example.com/")

	exists, err := backend.Exists(ctx, "tech-talk/feed.xml")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Upload(ctx, strings.NewReader("doc"), podpub.UploadParams{
		ObjectKey: "tech-talk/feed.xml",
	}))

	exists, err = backend.Exists(ctx, "tech-talk/feed.xml")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "https://cdn.example.com/tech-talk/feed.xml", backend.PublicURL("tech-talk/feed.xml"))
}
