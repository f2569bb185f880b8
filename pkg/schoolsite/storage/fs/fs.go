package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Backend is a filesystem implementation of the schoolsite.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

var _ schoolsite.BlobStore = (*Backend)(nil)

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files (MEDIA_ROOT)
	URLPrefix string // Optional URL prefix the directory is served under (MEDIA_URL)
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	// Validate and create base directory if it doesn't exist
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   filepath.Clean(config.BaseDir),
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// BaseDir returns the root directory of the backend
func (b *Backend) BaseDir() string {
	return b.baseDir
}

// path maps a key to a file below baseDir, rejecting keys that escape it
func (b *Backend) path(objectKey string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if p != b.baseDir && !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes base directory", objectKey)
	}
	return p, nil
}

// PutObject writes content to the filesystem. Content type and cache
// headers are not persisted; they are decided when the file is served.
func (b *Backend) PutObject(ctx context.Context, input schoolsite.PutObjectInput) error {
	filePath, err := b.path(input.Key)
	if err != nil {
		return err
	}

	// Create directory structure if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, input.Body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// URL returns the URL prefix joined with the key
func (b *Backend) URL(objectKey string) (string, error) {
	if b.urlPrefix == "" {
		return "", schoolsite.ErrURLNotAvailable
	}
	return b.urlPrefix + "/" + strings.TrimLeft(objectKey, "/"), nil
}

// Download downloads content directly from the filesystem
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, schoolsite.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return schoolsite.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))

	return nil
}

// Exists reports whether a regular file is stored under the key
func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// List walks the base directory and returns regular files whose
// slash-separated key starts with prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]schoolsite.ObjectInfo, error) {
	var out []schoolsite.ObjectInfo
	err := filepath.WalkDir(b.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, schoolsite.ObjectInfo{Key: key, Size: info.Size(), UpdatedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", b.baseDir, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Copy copies a file to a new key
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) error {
	src, err := b.Download(ctx, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()
	return b.PutObject(ctx, schoolsite.PutObjectInput{Key: dstKey, Body: src})
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	// Don't remove the base directory
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
