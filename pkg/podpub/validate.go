package podpub

import (
	"fmt"
	"regexp"
)

// Slugs end up in object keys and public URLs, so they are restricted to
// lowercase URL-safe characters and are immutable after creation.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func validateCreateFeed(req CreateFeedRequest) error {
	if req.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidInput)
	}
	if !slugPattern.MatchString(req.Slug) {
		return fmt.Errorf("%w: slug %q must be lowercase letters, digits and hyphens", ErrInvalidInput, req.Slug)
	}
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return nil
}

func validateAddEpisode(req AddEpisodeRequest) error {
	if req.FeedSlug == "" {
		return fmt.Errorf("%w: feed slug is required", ErrInvalidInput)
	}
	if req.Audio == nil {
		return fmt.Errorf("%w: audio artifact is required", ErrInvalidInput)
	}
	if req.Metadata.Title == "" {
		return fmt.Errorf("%w: episode title is required", ErrInvalidInput)
	}
	if req.Metadata.EpisodeNumber < 0 || req.Metadata.SeasonNumber < 0 {
		return fmt.Errorf("%w: episode and season numbers must be positive", ErrInvalidInput)
	}
	switch req.Metadata.EpisodeType {
	case "", EpisodeTypeFull, EpisodeTypeTrailer, EpisodeTypeBonus:
	default:
		return fmt.Errorf("%w: unknown episode type %q", ErrInvalidInput, req.Metadata.EpisodeType)
	}
	return nil
}
