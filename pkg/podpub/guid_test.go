package podpub_test

import (
	"crypto/md5"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/podpub/pkg/podpub"
)

func TestDeriveGUID(t *testing.T) {
	tests := []struct {
		name     string
		season   int
		episode  int
		hash     string
		expected string
	}{
		{
			name:     "season and episode",
			season:   2,
			episode:  7,
			hash:     "deadbeef",
			expected: "tech-talk-s2e7",
		},
		{
			name:     "episode without season",
			episode:  7,
			hash:     "deadbeef",
			expected: "tech-talk-e7",
		},
		{
			name:     "season alone does not count as numbering",
			season:   2,
			hash:     "deadbeef",
			expected: "tech-talk-deadbeef",
		},
		{
			name:     "no numbering falls back to content hash",
			hash:     "deadbeef",
			expected: "tech-talk-deadbeef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guid := podpub.DeriveGUID("tech-talk", tt.season, tt.episode, tt.hash)
			assert.Equal(t, tt.expected, guid)
		})
	}
}

func TestHashContent(t *testing.T) {
	data := "the same artifact bytes"
	expected := fmt.Sprintf("%x", md5.Sum([]byte(data)))

	hash, err := podpub.HashContent(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, expected, hash)

	again, err := podpub.HashContent(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "tech-talk/feed.xml", podpub.FeedObjectKey("tech-talk"))

	assert.Equal(t, "tech-talk/episodes/tech-talk-s1e1.mp3",
		podpub.EpisodeObjectKey("tech-talk", "tech-talk-s1e1", "recording.mp3"))
	assert.Equal(t, "tech-talk/episodes/tech-talk-s1e1.m4a",
		podpub.EpisodeObjectKey("tech-talk", "tech-talk-s1e1", "Recording.M4A"))
	assert.Equal(t, "tech-talk/episodes/tech-talk-s1e1.mp3",
		podpub.EpisodeObjectKey("tech-talk", "tech-talk-s1e1", ""))
}
