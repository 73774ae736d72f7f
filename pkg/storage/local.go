package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LocalStore is a DurableStore on the local filesystem. Each bucket is a directory under root
// and folders are plain directories. It backs development setups and tests.
type LocalStore struct {
	root string
}

var _ DurableStore = (*LocalStore)(nil)

// NewLocalStore uses root as the parent of all bucket directories.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) bucketDir(bucket string) (string, error) {
	dir := filepath.Join(s.root, bucket)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: bucket %s: %v", ErrUnavailable, bucket, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: bucket %s is not a directory", ErrUnavailable, bucket)
	}
	return dir, nil
}

func (s *LocalStore) Download(ctx context.Context, bucket, prefix, localDir string) error {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return err
	}
	src, err := localTarget(bucketDir, prefix)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walk %s: %v", ErrUnavailable, p, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		dest, err := localTarget(localDir, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		return copyFile(p, dest)
	})
}

func (s *LocalStore) Upload(ctx context.Context, bucket, localDir, prefix string) error {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return err
	}
	dst, err := localTarget(bucketDir, prefix)
	if err != nil {
		return err
	}

	return filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		return copyFile(p, filepath.Join(dst, rel))
	})
}

func (s *LocalStore) CreateUserFolders(_ context.Context, bucket string, layout Layout, user string) error {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return err
	}
	for _, p := range []string{layout.ResourcePath(user), layout.VectorStorePath(user)} {
		dir, err := localTarget(bucketDir, p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create folder %s: %w", p, err)
		}
	}
	return nil
}

func (s *LocalStore) Delete(_ context.Context, bucket, name string) (bool, error) {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return false, err
	}
	target, err := localTarget(bucketDir, name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := os.Remove(target); err != nil {
		return false, err
	}
	return true, nil
}

func (s *LocalStore) List(_ context.Context, bucket, prefix string) ([]string, error) {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return nil, err
	}
	src, err := localTarget(bucketDir, prefix)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0)
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.SkipAll
		}
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) SignedUploadURL(_ context.Context, bucket, name, _ string, _ time.Duration) (string, error) {
	bucketDir, err := s.bucketDir(bucket)
	if err != nil {
		return "", err
	}
	target, err := localTarget(bucketDir, name)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
