package schoolsite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository   Repository
	defaultStore BlobStore
	interceptor  Interceptor
	resolver     URLResolver
	keys         KeyGenerator
	logger       *slog.Logger
	now          func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithDefaultStore sets the store used for uploads the interceptor did not handle
func WithDefaultStore(store BlobStore) Option {
	return func(s *service) {
		s.defaultStore = store
	}
}

// WithInterceptor sets the upload interceptor
func WithInterceptor(i Interceptor) Option {
	return func(s *service) {
		s.interceptor = i
	}
}

// WithResolver sets the media URL resolver
func WithResolver(r URLResolver) Option {
	return func(s *service) {
		s.resolver = r
	}
}

// WithKeyGenerator sets how default store writes name their objects.
// Without one the field's destination path is used as is.
func WithKeyGenerator(g KeyGenerator) Option {
	return func(s *service) {
		s.keys = g
	}
}

// WithLogger sets the logger for the service
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		s.logger = l
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

func (s *service) Get(ctx context.Context, kind Kind, id int64) (Record, error) {
	return s.repository.Get(ctx, kind, id)
}

func (s *service) List(ctx context.Context, kind Kind, filter ListFilter) ([]Record, error) {
	return s.repository.List(ctx, kind, filter)
}

func (s *service) Delete(ctx context.Context, kind Kind, id int64) error {
	if err := s.repository.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", "kind", kind, "id", id)
	return nil
}

func (s *service) SaveRecord(ctx context.Context, rec Record, form Form) (*SaveResult, error) {
	warnings := s.storeMedia(ctx, rec, form)

	s.touch(rec)
	if err := Validate(rec); err != nil {
		return nil, err
	}
	if err := s.repository.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("record saved", "kind", rec.Kind(), "id", rec.GetID(), "warnings", len(warnings))
	return &SaveResult{Record: rec, Warnings: warnings}, nil
}

func (s *service) SavePage(ctx context.Context, page *Page, form Form, children []ChildForm) (*SaveResult, error) {
	warnings := s.storeMedia(ctx, page, form)

	var images []*ImageBlock
	var deleted []int64
	for i, child := range children {
		if child.Record == nil {
			continue
		}
		if child.Delete {
			if child.Record.ID != 0 {
				deleted = append(deleted, child.Record.ID)
			}
			continue
		}
		if err := s.storeChildMedia(ctx, child.Record, child.Form); err != nil {
			s.logger.Error("image block upload failed, aborting page save",
				"page", page.Slug, "index", i, "err", err)
			return nil, fmt.Errorf("image block %d: %w", i, err)
		}
		if err := Validate(child.Record); err != nil {
			return nil, fmt.Errorf("image block %d: %w", i, err)
		}
		images = append(images, child.Record)
	}

	if err := Validate(page); err != nil {
		return nil, err
	}
	if err := s.repository.SavePageWithImages(ctx, page, images, deleted); err != nil {
		return nil, err
	}

	s.logger.Info("page saved", "id", page.ID, "slug", page.Slug,
		"images", len(images), "deleted", len(deleted), "warnings", len(warnings))
	return &SaveResult{Record: page, Children: images, Warnings: warnings}, nil
}

func (s *service) ResolveURL(rec Record, field string) string {
	if s.resolver == nil {
		if ref := rec.MediaRef(field); ref != nil {
			return *ref
		}
		return ""
	}
	return s.resolver.Resolve(rec, field)
}

// storeMedia runs the interceptor over a top-level form and writes anything
// it did not handle through the default store. Failures become warnings and
// the field keeps its previous value.
func (s *service) storeMedia(ctx context.Context, rec Record, form Form) []Warning {
	if form == nil {
		return nil
	}
	before := snapshotMedia(rec)

	var warnings []Warning
	if s.interceptor != nil {
		warnings = append(warnings, s.interceptor.Apply(ctx, rec, form)...)
	}

	for _, f := range rec.MediaFields() {
		blob, ok := submitted(form, f.Name)
		if !ok {
			continue
		}
		ref := rec.MediaRef(f.Name)
		if ref == nil || *ref != before[f.Name] {
			continue
		}
		key, err := s.defaultWrite(ctx, rec, f, blob)
		if err != nil {
			s.logger.Warn("default storage write failed", "kind", rec.Kind(), "field", f.Name, "err", err)
			warnings = append(warnings, Warning{
				Kind:    rec.Kind(),
				Field:   f.Name,
				Message: fmt.Sprintf("could not store %s: %v", blob.Basename(), err),
				Err:     err,
			})
			continue
		}
		*ref = key
	}
	return warnings
}

// storeChildMedia is storeMedia for one image block. Any failure is returned.
func (s *service) storeChildMedia(ctx context.Context, rec Record, form Form) error {
	if form == nil {
		return nil
	}
	before := snapshotMedia(rec)

	if s.interceptor != nil {
		if err := s.interceptor.ApplyChild(ctx, rec, form); err != nil {
			return err
		}
	}

	for _, f := range rec.MediaFields() {
		blob, ok := submitted(form, f.Name)
		if !ok {
			continue
		}
		ref := rec.MediaRef(f.Name)
		if ref == nil || *ref != before[f.Name] {
			continue
		}
		key, err := s.defaultWrite(ctx, rec, f, blob)
		if err != nil {
			return &UploadError{Kind: rec.Kind(), Field: f.Name, Key: key, Err: err}
		}
		*ref = key
	}
	return nil
}

// defaultWrite stores a blob under its destination path, adding a short
// random suffix when the name is taken.
func (s *service) defaultWrite(ctx context.Context, rec Record, f MediaField, blob *UploadedBlob) (string, error) {
	if s.defaultStore == nil {
		return "", ErrConfigurationMissing
	}
	key := f.DestinationPath(rec, blob.Filename)
	if s.keys != nil {
		key = s.keys.GenerateKey(rec, f, blob.Filename)
	}

	exists, err := s.defaultStore.Exists(ctx, key)
	if err != nil {
		return key, err
	}
	if exists {
		key = withSuffix(key, strings.ReplaceAll(uuid.NewString(), "-", "")[:7])
	}

	if _, err := blob.Body.Seek(0, io.SeekStart); err != nil {
		return key, fmt.Errorf("rewind upload: %w", err)
	}
	err = s.defaultStore.PutObject(ctx, PutObjectInput{
		Key:         key,
		Body:        blob.Body,
		ContentType: blob.ContentType,
	})
	if err != nil {
		return key, err
	}
	return key, nil
}

// touch maintains certificate timestamps.
func (s *service) touch(rec Record) {
	c, ok := rec.(*Certificate)
	if !ok {
		return
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func submitted(form Form, field string) (*UploadedBlob, bool) {
	if !form.IsChanged(field) {
		return nil, false
	}
	blob, ok := form.CleanedValue(field)
	if !ok || blob == nil || blob.Body == nil {
		return nil, false
	}
	return blob, true
}

func snapshotMedia(rec Record) map[string]string {
	out := make(map[string]string)
	for _, f := range rec.MediaFields() {
		if ref := rec.MediaRef(f.Name); ref != nil {
			out[f.Name] = *ref
		}
	}
	return out
}

func withSuffix(key, suffix string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "_" + suffix + ext
}
