package objectkey

import (
	"regexp"
	"testing"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

var tokenKey = regexp.MustCompile(`^hero/[0-9a-f]{32}-photo\.jpg$`)

func TestTokenGenerator(t *testing.T) {
	gen := NewTokenGenerator()
	rec := &schoolsite.HeroSlide{}

	key := gen.GenerateKey(rec, schoolsite.HeroSlideImage, "photo.jpg")
	if !tokenKey.MatchString(key) {
		t.Errorf("key %q does not match %s", key, tokenKey)
	}
	if key == "hero/photo.jpg" {
		t.Errorf("key must not equal the plain destination path")
	}
}

func TestTokenGeneratorUnique(t *testing.T) {
	gen := NewTokenGenerator()
	rec := &schoolsite.HeroSlide{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := gen.GenerateKey(rec, schoolsite.HeroSlideImage, "photo.jpg")
		if seen[key] {
			t.Fatalf("duplicate key %s", key)
		}
		seen[key] = true
	}
}

func TestTokenGeneratorPaths(t *testing.T) {
	gen := &TokenGenerator{Token: func() string { return "tok" }}

	tests := []struct {
		name     string
		rec      schoolsite.Record
		field    schoolsite.MediaField
		filename string
		expected string
	}{
		{
			name:     "fixed prefix",
			rec:      &schoolsite.About{},
			field:    schoolsite.AboutImage,
			filename: "school.png",
			expected: "about/tok-school.png",
		},
		{
			name:     "windows path keeps basename only",
			rec:      &schoolsite.Director{},
			field:    schoolsite.DirectorImage,
			filename: `C:\Users\admin\portrait.jpg`,
			expected: "director/tok-portrait.jpg",
		},
		{
			name:     "computed path",
			rec:      &schoolsite.Certificate{Category: schoolsite.CategoryStudents},
			field:    schoolsite.CertificateImage,
			filename: "award.jpg",
			expected: "certificates/students/tok-award.jpg",
		},
		{
			name:     "computed path falls back to prefix",
			rec:      &schoolsite.Certificate{Category: "parents"},
			field:    schoolsite.CertificateImage,
			filename: "award.jpg",
			expected: "certificates/tok-award.jpg",
		},
		{
			name:     "leading slash stripped",
			rec:      &schoolsite.HeroSlide{},
			field:    schoolsite.MediaField{Name: "image", UploadTo: "/hero//"},
			filename: "a.jpg",
			expected: "hero/tok-a.jpg",
		},
		{
			name:     "spaces sanitized",
			rec:      &schoolsite.HeroSlide{},
			field:    schoolsite.HeroSlideImage,
			filename: "first day.jpg",
			expected: "hero/tok-first_day.jpg",
		},
		{
			name:     "empty filename",
			rec:      &schoolsite.HeroSlide{},
			field:    schoolsite.HeroSlideImage,
			filename: "",
			expected: "hero/tok-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gen.GenerateKey(tt.rec, tt.field, tt.filename)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestPlainGenerator(t *testing.T) {
	gen := NewPlainGenerator()
	result := gen.GenerateKey(&schoolsite.ImageBlock{}, schoolsite.ImageBlockImage, "a/b/c.png")
	if result != "images/c.png" {
		t.Errorf("expected images/c.png, got %s", result)
	}
}
