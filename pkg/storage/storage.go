// Package storage talks to the durable object store that holds each user's source documents and
// built vector store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnavailable wraps provider and network failures. Callers may retry.
var ErrUnavailable = errors.New("storage provider unavailable")

// ErrInvalidPath is returned for object names that would escape the destination directory.
var ErrInvalidPath = errors.New("invalid object path")

// Default folder names under a bucket: data/<user>/resources and data/<user>/vectorStore.
const (
	DefaultDataFolder        = "data"
	DefaultResourceFolder    = "resources"
	DefaultVectorStoreFolder = "vectorStore"
)

// DurableStore is an object store addressed by bucket and slash-separated names.
type DurableStore interface {
	// Download copies every object under prefix into localDir, preserving relative paths.
	// An empty prefix produces zero files and no error.
	Download(ctx context.Context, bucket, prefix, localDir string) error
	// Upload copies every file under localDir to prefix.
	Upload(ctx context.Context, bucket, localDir, prefix string) error
	// CreateUserFolders creates the data, resource and vector store placeholders for a user.
	CreateUserFolders(ctx context.Context, bucket string, layout Layout, user string) error
	// Delete removes one object and reports whether it existed.
	Delete(ctx context.Context, bucket, name string) (bool, error)
	// List returns object names under prefix relative to it, skipping folder placeholders.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	// SignedUploadURL returns a URL a client can PUT a file to.
	SignedUploadURL(ctx context.Context, bucket, name, contentType string, ttl time.Duration) (string, error)
}

// Layout names the per-user folders inside a bucket.
type Layout struct {
	DataFolder        string
	ResourceFolder    string
	VectorStoreFolder string
}

// DefaultLayout matches what the ingestion job writes.
func DefaultLayout() Layout {
	return Layout{
		DataFolder:        DefaultDataFolder,
		ResourceFolder:    DefaultResourceFolder,
		VectorStoreFolder: DefaultVectorStoreFolder,
	}
}

// UserFolder is data/<user>.
func (l Layout) UserFolder(user string) string {
	return path.Join(l.DataFolder, user)
}

// ResourcePath is data/<user>/resources.
func (l Layout) ResourcePath(user string) string {
	return path.Join(l.DataFolder, user, l.ResourceFolder)
}

// VectorStorePath is data/<user>/vectorStore.
func (l Layout) VectorStorePath(user string) string {
	return path.Join(l.DataFolder, user, l.VectorStoreFolder)
}

// relativeName strips prefix from an object name.
func relativeName(name, prefix string) string {
	rel := strings.TrimPrefix(name, prefix)
	return strings.TrimLeft(rel, "/")
}

// localTarget maps a relative object name to a path inside dir, rejecting traversal.
func localTarget(dir, rel string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(rel))
	cleanDir := filepath.Clean(dir)
	if target != cleanDir && !strings.HasPrefix(target, cleanDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, rel)
	}
	return target, nil
}

func withSlash(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
