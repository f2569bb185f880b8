package schoolsite

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// PutObject writes the full body under the given key
	PutObject(ctx context.Context, input PutObjectInput) error

	// URL returns a direct URL for the stored key, or an error when the
	// backend cannot produce one
	URL(objectKey string) (string, error)

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// Exists reports whether an object is stored under the key
	Exists(ctx context.Context, objectKey string) (bool, error)

	// List returns the objects whose keys start with prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Copy copies an object to a new key within the same store
	Copy(ctx context.Context, srcKey, dstKey string) error
}

// PutObjectInput contains parameters for writing an object
type PutObjectInput struct {
	Key          string
	Body         io.Reader
	ContentType  string
	CacheControl string
	Public       bool
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Repository defines the interface for record persistence
type Repository interface {
	// Save inserts the record when its ID is zero and updates it otherwise.
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, kind Kind, id int64) (Record, error)
	List(ctx context.Context, kind Kind, filter ListFilter) ([]Record, error)
	Delete(ctx context.Context, kind Kind, id int64) error

	// SavePageWithImages saves a page, saves its image blocks and deletes the
	// listed image block IDs of that page, atomically.
	SavePageWithImages(ctx context.Context, page *Page, images []*ImageBlock, deleted []int64) error
}

// ListFilter narrows a List call. Zero values mean no filtering.
type ListFilter struct {
	PageID   int64  // image blocks of one page
	Category string // certificates
	Level    string // certificates
}

// KeyGenerator computes the storage key for an upload into a media field.
type KeyGenerator interface {
	GenerateKey(rec Record, field MediaField, filename string) string
}

// URLResolver turns a record's media field into a client-facing URL.
type URLResolver interface {
	Resolve(rec Record, field string) string
}

// Interceptor pushes uploaded blobs to the bucket before a record is saved.
type Interceptor interface {
	// Apply processes a top-level record form. Failures become warnings.
	Apply(ctx context.Context, rec Record, form Form) []Warning

	// ApplyChild processes one child form. Failures are returned so the
	// enclosing batch can be aborted.
	ApplyChild(ctx context.Context, rec Record, form Form) error
}
