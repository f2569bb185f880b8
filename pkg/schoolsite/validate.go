package schoolsite

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Validate checks the required fields of a record before it is persisted.
func Validate(rec Record) error {
	switch r := rec.(type) {
	case *NavLink:
		if err := required("name", r.Name); err != nil {
			return err
		}
		return required("href", r.Href)
	case *HeroSlide:
		return required("image", r.Image)
	case *About:
		if err := required("title", r.Title); err != nil {
			return err
		}
		return required("body", r.Body)
	case *Stat:
		if err := required("number", r.Number); err != nil {
			return err
		}
		return required("label", r.Label)
	case *Director:
		return required("name", r.Name)
	case *Page:
		if err := required("title", r.Title); err != nil {
			return err
		}
		if !slugPattern.MatchString(r.Slug) {
			return &ValidationError{Field: "slug", Message: "must consist of letters, numbers, underscores or hyphens"}
		}
		return nil
	case *ImageBlock:
		return required("image", r.Image)
	case *Certificate:
		if err := required("title", r.Title); err != nil {
			return err
		}
		if len(r.Year) == 0 || len(r.Year) > 4 {
			return &ValidationError{Field: "year", Message: "must be 1 to 4 characters"}
		}
		if !IsValidCategory(r.Category) {
			return &ValidationError{Field: "category", Message: ErrInvalidCategory.Error()}
		}
		if !IsValidLevel(r.Level) {
			return &ValidationError{Field: "level", Message: ErrInvalidLevel.Error()}
		}
		return required("image", r.Image)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "this field is required"}
	}
	return nil
}
