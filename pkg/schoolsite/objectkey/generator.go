package objectkey

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates the bucket key for an upload of filename into the
	// record's media field
	GenerateKey(rec schoolsite.Record, field schoolsite.MediaField, filename string) string
}

// TokenGenerator prefixes the basename with a random 32 hex character token.
// Directory: the field's destination path, left untouched
// Key:       hero/3f2a...9c1e-photo.jpg
type TokenGenerator struct {
	// Token returns the unique token; defaults to a dashless UUIDv4
	Token func() string
}

func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{Token: newToken}
}

func (g *TokenGenerator) GenerateKey(rec schoolsite.Record, field schoolsite.MediaField, filename string) string {
	dest := field.DestinationPath(rec, filename)
	dir, base := path.Split(dest)
	if base == "" {
		base = "file"
	}

	token := newToken
	if g.Token != nil {
		token = g.Token
	}
	return fmt.Sprintf("%s%s-%s", dir, token(), sanitizeFilename(base))
}

// PlainGenerator returns the destination path unchanged. Used for local
// writes, where the service resolves collisions itself.
type PlainGenerator struct{}

func NewPlainGenerator() *PlainGenerator {
	return &PlainGenerator{}
}

func (g *PlainGenerator) GenerateKey(rec schoolsite.Record, field schoolsite.MediaField, filename string) string {
	return field.DestinationPath(rec, filename)
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sanitizeFilename replaces characters that are awkward in URLs and on disk
func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"#", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

// NewRecommendedGenerator returns the generator used for bucket uploads
func NewRecommendedGenerator() Generator {
	return NewTokenGenerator()
}
