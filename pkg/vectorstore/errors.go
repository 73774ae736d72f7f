package vectorstore

import "errors"

var (
	// ErrInvalidSession is returned when Load is called without a session id.
	ErrInvalidSession = errors.New("session id is required")

	// ErrInvalidUser is returned when Load is called without a user identity.
	ErrInvalidUser = errors.New("user identity is required")

	// ErrNotFound means the durable store holds no complete vector store for the user.
	// The user has to run ingestion before querying.
	ErrNotFound = errors.New("no vector store for this user")

	// ErrCorrupt is returned by the codecs when a blob cannot be decoded.
	ErrCorrupt = errors.New("vector store data is corrupt")

	// ErrCacheCorrupt marks cached bytes that failed to decode. The loader treats it as a miss.
	ErrCacheCorrupt = errors.New("cached vector store is corrupt")

	// ErrCacheUnavailable marks a cache that could not be reached. The loader degrades to a rebuild.
	ErrCacheUnavailable = errors.New("vector store cache unavailable")

	// ErrDurableStoreUnavailable is a retryable storage provider failure.
	ErrDurableStoreUnavailable = errors.New("durable store unavailable")
)
