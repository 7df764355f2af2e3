package podpub

import (
	"crypto/md5"
	"fmt"
	"io"
	"path"
	"strings"
)

// DeriveGUID computes the stable identifier for an episode. Numbering-based
// derivation takes precedence: when an episode number is present the GUID is
// built from the slug plus season/episode numbers, so republishing the same
// logical episode with corrected audio keeps the same identity. Without
// numbering the GUID falls back to a content hash, making identity follow
// the artifact bytes.
//
// Examples: "tech-talk-s1e4", "tech-talk-e4", "tech-talk-0afc9e...".
func DeriveGUID(slug string, seasonNumber, episodeNumber int, contentHash string) string {
	if episodeNumber > 0 {
		if seasonNumber > 0 {
			return fmt.Sprintf("%s-s%de%d", slug, seasonNumber, episodeNumber)
		}
		return fmt.Sprintf("%s-e%d", slug, episodeNumber)
	}
	return fmt.Sprintf("%s-%s", slug, contentHash)
}

// HashContent returns the hex content hash used by DeriveGUID for episodes
// without numbering.
func HashContent(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FeedObjectKey returns the object key of a feed's RSS document.
func FeedObjectKey(slug string) string {
	return slug + "/feed.xml"
}

// EpisodeObjectKey returns the object key of an episode's audio artifact.
// The extension comes from the source file name, defaulting to .mp3. Keys
// are built only from immutable identifiers so re-publishing never changes
// previously issued URLs.
func EpisodeObjectKey(slug, guid, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".mp3"
	}
	return fmt.Sprintf("%s/episodes/%s%s", slug, guid, ext)
}
