package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
)

const gcsModule = "storage.gcs"

// GCSStore is a DurableStore backed by Google Cloud Storage.
type GCSStore struct {
	client *gcs.Client
	logger logger.ILogger
}

var _ DurableStore = (*GCSStore)(nil)

// NewGCSStore creates a client using application default credentials.
func NewGCSStore(ctx context.Context, log logger.ILogger) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create gcs client: %v", ErrUnavailable, err)
	}
	return &GCSStore{client: client, logger: log}, nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Download(ctx context.Context, bucket, prefix, localDir string) error {
	prefix = withSlash(prefix)
	b := s.client.Bucket(bucket)
	it := b.Objects(ctx, &gcs.Query{Prefix: prefix})

	count := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			s.logger.Error(gcsModule, "Failed to list objects", map[string]interface{}{
				"bucket": bucket, "prefix": prefix, "error": err.Error(),
			})
			return fmt.Errorf("%w: list %s/%s: %v", ErrUnavailable, bucket, prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		rel := relativeName(attrs.Name, prefix)
		if rel == "" {
			continue
		}
		dest, err := localTarget(localDir, rel)
		if err != nil {
			return err
		}
		if err := s.downloadObject(ctx, b.Object(attrs.Name), dest); err != nil {
			return err
		}
		count++
	}

	if count == 0 {
		s.logger.Warn(gcsModule, "No objects found under prefix", map[string]interface{}{
			"bucket": bucket, "prefix": prefix,
		})
	}
	return nil
}

func (s *GCSStore) downloadObject(ctx context.Context, obj *gcs.ObjectHandle, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	r, err := obj.NewReader(ctx)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrUnavailable, obj.ObjectName(), err)
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, obj.ObjectName(), err)
	}
	return f.Close()
}

func (s *GCSStore) Upload(ctx context.Context, bucket, localDir, prefix string) error {
	b := s.client.Bucket(bucket)
	return filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		name := path.Join(prefix, filepath.ToSlash(rel))
		if err := s.uploadFile(ctx, b.Object(name), p); err != nil {
			return err
		}
		s.logger.Info(gcsModule, "Uploaded object", map[string]interface{}{"bucket": bucket, "object": name})
		return nil
	})
}

func (s *GCSStore) uploadFile(ctx context.Context, obj *gcs.ObjectHandle, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, obj.ObjectName(), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: finalize %s: %v", ErrUnavailable, obj.ObjectName(), err)
	}
	return nil
}

func (s *GCSStore) CreateUserFolders(ctx context.Context, bucket string, layout Layout, user string) error {
	b := s.client.Bucket(bucket)
	folder := withSlash(layout.UserFolder(user))

	it := b.Objects(ctx, &gcs.Query{Prefix: folder, Delimiter: "/"})
	_, err := it.Next()
	if err == nil {
		s.logger.Info(gcsModule, "User folder already exists", map[string]interface{}{"bucket": bucket, "folder": folder})
		return nil
	}
	if !errors.Is(err, iterator.Done) {
		return fmt.Errorf("%w: probe %s: %v", ErrUnavailable, folder, err)
	}

	placeholders := []string{
		folder,
		withSlash(layout.ResourcePath(user)),
		withSlash(layout.VectorStorePath(user)),
	}
	for _, name := range placeholders {
		w := b.Object(name).NewWriter(ctx)
		if err := w.Close(); err != nil {
			return fmt.Errorf("%w: create folder %s: %v", ErrUnavailable, name, err)
		}
		s.logger.Info(gcsModule, "Created folder", map[string]interface{}{"bucket": bucket, "folder": name})
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, bucket, name string) (bool, error) {
	err := s.client.Bucket(bucket).Object(name).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: delete %s: %v", ErrUnavailable, name, err)
	}
	return true, nil
}

func (s *GCSStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	prefix = withSlash(prefix)
	it := s.client.Bucket(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})

	names := make([]string, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		names = append(names, relativeName(attrs.Name, prefix))
	}
	return names, nil
}

func (s *GCSStore) SignedUploadURL(_ context.Context, bucket, name, contentType string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(bucket).SignedURL(name, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %v", ErrUnavailable, name, err)
	}
	return url, nil
}
