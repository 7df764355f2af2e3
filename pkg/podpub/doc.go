// Package podpub is a podcast feed and episode publishing engine.
//
// It records feed and episode metadata in a Repository, uploads audio
// artifacts and the rendered RSS document to a BlobStore, and keeps the
// two consistent: audio is always uploaded before the episode row is
// committed, and the feed document is recomputed from the metadata store
// on every mutation, never patched in place.
//
// Basic usage:
//
//	svc, err := podpub.New(
//	    podpub.WithRepository(memory.New()),
//	    podpub.WithBlobStore(memorystorage.New("https://cdn.example.com")),
//	    podpub.WithDocumentBuilder(feedxml.New()),
//	)
//	res, err := svc.CreateFeed(ctx, podpub.CreateFeedRequest{
//	    Slug:  "tech-talk",
//	    Title: "Tech Talk Podcast",
//	})
//
// Episodes are keyed by a deterministic GUID (see DeriveGUID), which makes
// AddEpisode idempotent: republishing with the same GUID overwrites the
// stored episode and regenerates the document instead of duplicating it.
package podpub
