// Package simplemovies provides the core library for the simple-movies
// catalog service: movie, review and comment lifecycles over a pluggable
// document repository, blob storage with signed-URL delivery, and the
// key-repair maintenance operation.
//
// Movies persist object-storage keys for their media assets; they never
// persist resolvable URLs. Every read path resolves the stored keys into
// freshly signed, time-limited URLs (see ResolvedMovie), so a response only
// ever carries URLs minted within the current request.
//
// Basic usage:
//
//	svc, err := simplemovies.New(
//	    simplemovies.WithRepository(memoryrepo.New()),
//	    simplemovies.WithBlobStore(memorystorage.New()),
//	)
//
// Storage and repository implementations live under storage/ and repo/.
package simplemovies
