package vectorstore

const (
	indexKeySuffix    = "_index"
	metadataKeySuffix = "_metadata"
	lockKeySuffix     = "_lock"
)

// IndexKey is the cache key holding the serialized index of a session.
func IndexKey(sessionID string) string { return sessionID + indexKeySuffix }

// MetadataKey is the cache key holding the serialized document records of a session.
func MetadataKey(sessionID string) string { return sessionID + metadataKeySuffix }

// LockKey guards a single rebuild per session.
func LockKey(sessionID string) string { return sessionID + lockKeySuffix }
