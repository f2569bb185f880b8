package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Object is a stored object together with the headers it was written with
type Object struct {
	Data         []byte
	ContentType  string
	CacheControl string
	Public       bool
	UpdatedAt    time.Time
}

// Backend is an in-memory implementation of the schoolsite.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]*Object
}

var _ schoolsite.BlobStore = (*Backend)(nil)

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]*Object),
	}
}

// PutObject stores the full body under the key
func (b *Backend) PutObject(ctx context.Context, input schoolsite.PutObjectInput) error {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return err
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[input.Key] = &Object{
		Data:         data,
		ContentType:  contentType,
		CacheControl: input.CacheControl,
		Public:       input.Public,
		UpdatedAt:    time.Now().UTC(),
	}
	return nil
}

// URL is not available for the memory backend
func (b *Backend) URL(objectKey string) (string, error) {
	return "", schoolsite.ErrURLNotAvailable
}

// Object returns a copy of the stored object
func (b *Backend) Object(objectKey string) (*Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[objectKey]
	if !ok {
		return nil, false
	}
	c := *obj
	c.Data = append([]byte(nil), obj.Data...)
	return &c, true
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, schoolsite.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return schoolsite.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	return nil
}

// Exists reports whether the key is stored
func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[objectKey]
	return exists, nil
}

// List returns stored objects under prefix, sorted by key
func (b *Backend) List(ctx context.Context, prefix string) ([]schoolsite.ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []schoolsite.ObjectInfo
	for key, obj := range b.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, schoolsite.ObjectInfo{Key: key, Size: int64(len(obj.Data)), UpdatedAt: obj.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Copy duplicates an object under a new key
func (b *Backend) Copy(ctx context.Context, srcKey, dstKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, exists := b.objects[srcKey]
	if !exists {
		return schoolsite.ErrObjectNotFound
	}
	c := *obj
	c.Data = append([]byte(nil), obj.Data...)
	c.UpdatedAt = time.Now().UTC()
	b.objects[dstKey] = &c
	return nil
}
