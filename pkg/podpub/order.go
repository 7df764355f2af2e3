package podpub

import "sort"

// CompareEpisodes orders episodes for feed rendering: PublishedAt descending
// (newest first), ties broken by season then episode number descending with
// unset numbers sorting last, then GUID ascending for determinism.
func CompareEpisodes(a, b *Episode) int {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		if a.PublishedAt.After(b.PublishedAt) {
			return -1
		}
		return 1
	}
	if c := compareNumberDesc(a.SeasonNumber, b.SeasonNumber); c != 0 {
		return c
	}
	if c := compareNumberDesc(a.EpisodeNumber, b.EpisodeNumber); c != 0 {
		return c
	}
	switch {
	case a.GUID < b.GUID:
		return -1
	case a.GUID > b.GUID:
		return 1
	}
	return 0
}

// compareNumberDesc sorts positive numbers descending and zero (unset) last.
func compareNumberDesc(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == 0:
		return 1
	case b == 0:
		return -1
	case a > b:
		return -1
	}
	return 1
}

// SortEpisodes sorts episodes in place into canonical order.
func SortEpisodes(episodes []*Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		return CompareEpisodes(episodes[i], episodes[j]) < 0
	})
}
