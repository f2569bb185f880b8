// Package upload pushes media submitted through administrative forms to the
// object storage bucket under fresh unique keys, before the record is saved.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/objectkey"
)

// CacheControl is sent with every uploaded object.
const CacheControl = "max-age=86400"

const defaultContentType = "application/octet-stream"

// Config identifies the target bucket and the credentials used to reach it.
type Config struct {
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// Configured reports whether both credentials and a bucket are present.
func (c Config) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Interceptor implements schoolsite.Interceptor on top of a BlobStore.
type Interceptor struct {
	cfg       Config
	store     schoolsite.BlobStore
	generator objectkey.Generator
	logger    *slog.Logger
}

var _ schoolsite.Interceptor = (*Interceptor)(nil)

// Option configures an Interceptor
type Option func(*Interceptor)

// WithGenerator overrides the key generator
func WithGenerator(g objectkey.Generator) Option {
	return func(i *Interceptor) {
		i.generator = g
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		i.logger = l
	}
}

// New creates an interceptor writing to store. The store is expected to be
// the bucket named in cfg.
func New(cfg Config, store schoolsite.BlobStore, opts ...Option) *Interceptor {
	i := &Interceptor{
		cfg:       cfg,
		store:     store,
		generator: objectkey.NewRecommendedGenerator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Apply uploads every changed media field of a top-level record. A failed
// upload is reported as a warning and the field is left untouched.
func (i *Interceptor) Apply(ctx context.Context, rec schoolsite.Record, form schoolsite.Form) []schoolsite.Warning {
	var warnings []schoolsite.Warning
	for _, f := range rec.MediaFields() {
		if err := i.applyField(ctx, rec, f, form); err != nil {
			i.logger.Warn("media upload failed", "kind", rec.Kind(), "field", f.Name, "err", err)
			warnings = append(warnings, schoolsite.Warning{
				Kind:    rec.Kind(),
				Field:   f.Name,
				Message: warningMessage(f.Name, err),
				Err:     err,
			})
		}
	}
	return warnings
}

// ApplyChild is Apply for an inline child record; the first failure is
// returned so the caller can abort the batch.
func (i *Interceptor) ApplyChild(ctx context.Context, rec schoolsite.Record, form schoolsite.Form) error {
	for _, f := range rec.MediaFields() {
		if err := i.applyField(ctx, rec, f, form); err != nil {
			i.logger.Error("child media upload failed", "kind", rec.Kind(), "field", f.Name, "err", err)
			return err
		}
	}
	return nil
}

func (i *Interceptor) applyField(ctx context.Context, rec schoolsite.Record, f schoolsite.MediaField, form schoolsite.Form) error {
	if form == nil || !form.IsChanged(f.Name) {
		return nil
	}
	blob, ok := form.CleanedValue(f.Name)
	if !ok || blob == nil || blob.Body == nil {
		return nil
	}
	ref := rec.MediaRef(f.Name)
	if ref == nil {
		return fmt.Errorf("%w: %s.%s", schoolsite.ErrUnknownMediaField, rec.Kind(), f.Name)
	}

	key := i.KeyFor(rec, f, blob.Filename)
	if err := i.Put(ctx, blob, key); err != nil {
		return &schoolsite.UploadError{Kind: rec.Kind(), Field: f.Name, Key: key, Err: err}
	}

	i.logger.Info("media uploaded", "kind", rec.Kind(), "field", f.Name, "key", key, "size", blob.Size)
	*ref = key
	return nil
}

// KeyFor computes the destination key of an upload. It performs no I/O.
func (i *Interceptor) KeyFor(rec schoolsite.Record, f schoolsite.MediaField, filename string) string {
	return i.generator.GenerateKey(rec, f, filename)
}

// Put writes the blob under key with the fixed cache-control directive.
// Without credentials or bucket it returns ErrConfigurationMissing at once.
func (i *Interceptor) Put(ctx context.Context, blob *schoolsite.UploadedBlob, key string) error {
	if !i.cfg.Configured() || i.store == nil {
		return schoolsite.ErrConfigurationMissing
	}
	if blob == nil || blob.Body == nil {
		return fmt.Errorf("%w: empty upload", schoolsite.ErrTransferFailed)
	}
	if _, err := blob.Body.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewind: %v", schoolsite.ErrTransferFailed, err)
	}

	contentType, err := ContentType(blob, key)
	if err != nil {
		return fmt.Errorf("%w: %v", schoolsite.ErrTransferFailed, err)
	}

	err = i.store.PutObject(ctx, schoolsite.PutObjectInput{
		Key:          key,
		Body:         blob.Body,
		ContentType:  contentType,
		CacheControl: CacheControl,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", schoolsite.ErrTransferFailed, err)
	}
	return nil
}

// ContentType picks the declared type, then the type implied by the key's
// extension, then the sniffed type. The blob is left rewound.
func ContentType(blob *schoolsite.UploadedBlob, key string) (string, error) {
	if blob.ContentType != "" {
		return blob.ContentType, nil
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct, nil
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(blob.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := blob.Body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if n == 0 {
		return defaultContentType, nil
	}
	return mimetype.Detect(head[:n]).String(), nil
}

func warningMessage(field string, err error) string {
	if errors.Is(err, schoolsite.ErrConfigurationMissing) {
		return fmt.Sprintf("%s was not uploaded to the bucket: storage is not configured", field)
	}
	return fmt.Sprintf("%s was not uploaded to the bucket: %v", field, err)
}
