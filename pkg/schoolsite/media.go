package schoolsite

import (
	"io"
	"path"
	"strings"
)

// Kind identifies a record type.
type Kind string

// Record kinds.
const (
	KindNavLink     Kind = "navlink"
	KindHeader      Kind = "header"
	KindHeroSlide   Kind = "heroslide"
	KindAbout       Kind = "about"
	KindStat        Kind = "stat"
	KindDirector    Kind = "director"
	KindContactInfo Kind = "contactinfo"
	KindFooter      Kind = "footer"
	KindPage        Kind = "page"
	KindImageBlock  Kind = "imageblock"
	KindCertificate Kind = "certificate"
)

// Kinds lists every record kind in a stable order.
var Kinds = []Kind{
	KindNavLink, KindHeader, KindHeroSlide, KindAbout, KindStat, KindDirector,
	KindContactInfo, KindFooter, KindPage, KindImageBlock, KindCertificate,
}

// UploadPathFunc computes the full destination path of an upload from the
// owning record and the original file name.
type UploadPathFunc func(rec Record, filename string) (string, error)

// MediaField describes one stored-file attribute of a record type.
//
// UploadTo is the fixed directory prefix. When UploadPath is set it takes
// precedence; if it fails the key falls back to UploadTo joined with the
// basename.
type MediaField struct {
	Name       string
	UploadTo   string
	UploadPath UploadPathFunc
}

// Record is implemented by every persisted model.
type Record interface {
	Kind() Kind
	GetID() int64
	SetID(id int64)

	// MediaFields returns the statically declared media manifest.
	MediaFields() []MediaField

	// MediaRef returns a pointer to the stored key of the named media field,
	// or nil when the record has no such field.
	MediaRef(name string) *string
}

// UploadedBlob is a file submitted with an administrative form. It lives for
// the duration of one save operation.
type UploadedBlob struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Basename returns the final element of the original file name, accepting
// both slash conventions.
func (b *UploadedBlob) Basename() string {
	name := strings.ReplaceAll(b.Filename, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// Form is the administrative form boundary consumed by the interceptor.
type Form interface {
	// IsChanged reports whether the form marks the field as changed.
	IsChanged(field string) bool

	// CleanedValue returns the newly submitted blob for the field, if any.
	CleanedValue(field string) (*UploadedBlob, bool)
}

// Warning is a non-fatal problem reported back to the operator after a save.
type Warning struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// DestinationPath resolves the field's destination template for a file name:
// the computed UploadPath when set and successful, UploadTo joined with the
// basename otherwise. The result uses forward slashes only and carries no
// leading slash.
func (f MediaField) DestinationPath(rec Record, filename string) string {
	base := (&UploadedBlob{Filename: filename}).Basename()
	var p string
	if f.UploadPath != nil {
		computed, err := f.UploadPath(rec, base)
		if err == nil && computed != "" {
			p = computed
		}
	}
	if p == "" {
		p = f.UploadTo + "/" + base
	}
	return NormalizeKey(p)
}

// NormalizeKey converts backslashes to slashes, collapses repeated slashes
// and strips any leading slash.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return strings.TrimLeft(key, "/")
}
