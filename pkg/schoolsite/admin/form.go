// Package admin adapts multipart administrative submissions to the form
// boundary consumed by the upload interceptor, including formset-style
// child forms ("images-0-image", "images-TOTAL_FORMS").
package admin

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// MultipartForm implements schoolsite.Form over a parsed multipart request.
// Child forms share the parent's files; Close releases all of them.
type MultipartForm struct {
	prefix string
	form   *multipart.Form
	opened map[string]*schoolsite.UploadedBlob
	files  *[]io.Closer
}

var _ schoolsite.Form = (*MultipartForm)(nil)

// NewMultipartForm wraps a parsed multipart form. A nil form behaves as empty.
func NewMultipartForm(form *multipart.Form) *MultipartForm {
	if form == nil {
		form = &multipart.Form{}
	}
	return &MultipartForm{
		form:   form,
		opened: make(map[string]*schoolsite.UploadedBlob),
		files:  new([]io.Closer),
	}
}

// Child returns the form addressed by prefix, e.g. "images-0".
func (f *MultipartForm) Child(prefix string) *MultipartForm {
	return &MultipartForm{
		prefix: f.key(prefix),
		form:   f.form,
		opened: make(map[string]*schoolsite.UploadedBlob),
		files:  f.files,
	}
}

// Children returns the child forms of a formset, in index order.
func (f *MultipartForm) Children(prefix string) ([]*MultipartForm, error) {
	total := 0
	if raw, ok := f.Value(prefix + "-TOTAL_FORMS"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &schoolsite.ValidationError{Field: prefix + "-TOTAL_FORMS", Message: "must be a non-negative integer"}
		}
		total = n
	}
	out := make([]*MultipartForm, total)
	for i := range out {
		out[i] = f.Child(fmt.Sprintf("%s-%d", prefix, i))
	}
	return out, nil
}

func (f *MultipartForm) key(field string) string {
	if f.prefix == "" {
		return field
	}
	return f.prefix + "-" + field
}

// Value returns the first value submitted for field.
func (f *MultipartForm) Value(field string) (string, bool) {
	vs, ok := f.form.Value[f.key(field)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Values returns every value submitted for field.
func (f *MultipartForm) Values(field string) []string {
	return f.form.Value[f.key(field)]
}

// Bool reads a checkbox: "on", "true", "1" and "yes" are checked.
func (f *MultipartForm) Bool(field string) bool {
	v, _ := f.Value(field)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Cleared reports whether the "<field>-clear" checkbox is set.
func (f *MultipartForm) Cleared(field string) bool {
	return f.Bool(field + "-clear")
}

func (f *MultipartForm) fileHeader(field string) *multipart.FileHeader {
	fhs := f.form.File[f.key(field)]
	if len(fhs) == 0 || fhs[0] == nil || fhs[0].Filename == "" {
		return nil
	}
	return fhs[0]
}

// HasFile reports whether a new file was submitted for field.
func (f *MultipartForm) HasFile(field string) bool {
	return f.fileHeader(field) != nil
}

// IsChanged reports whether field was touched: a new file was submitted or
// its clear checkbox was set. A cleared field has no cleaned value.
func (f *MultipartForm) IsChanged(field string) bool {
	return f.HasFile(field) || f.Cleared(field)
}

// CleanedValue opens the submitted file. Repeated calls return the same blob.
func (f *MultipartForm) CleanedValue(field string) (*schoolsite.UploadedBlob, bool) {
	if blob, ok := f.opened[field]; ok {
		return blob, true
	}
	fh := f.fileHeader(field)
	if fh == nil {
		return nil, false
	}
	file, err := fh.Open()
	if err != nil {
		slog.Error("Failed to open uploaded file", "field", f.key(field), "filename", fh.Filename, "error", err)
		return nil, false
	}
	*f.files = append(*f.files, file)

	blob := &schoolsite.UploadedBlob{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	}
	f.opened[field] = blob
	return blob, true
}

// Close closes every file opened through this form or its children.
func (f *MultipartForm) Close() error {
	var first error
	for _, c := range *f.files {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	*f.files = nil
	return first
}
