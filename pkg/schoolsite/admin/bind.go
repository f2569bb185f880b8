package admin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Bind copies submitted text fields onto rec. Fields absent from the form
// keep their current value, so the same binder serves create and update.
// A checked "<media>-clear" box empties that media field.
func Bind(rec schoolsite.Record, f *MultipartForm) error {
	b := binder{form: f}

	switch r := rec.(type) {
	case *schoolsite.NavLink:
		b.str("name", &r.Name)
		b.str("href", &r.Href)
		b.integer("order", &r.Order)
	case *schoolsite.Header:
		b.str("phone", &r.Phone)
		b.str("email", &r.Email)
		b.ids("nav_links", &r.NavLinkIDs)
	case *schoolsite.HeroSlide:
		b.str("title", &r.Title)
		b.str("subtitle", &r.Subtitle)
		b.integer("order", &r.Order)
	case *schoolsite.About:
		b.str("title", &r.Title)
		b.str("body", &r.Body)
		b.color("title_color", &r.TitleColor)
		b.color("body_color", &r.BodyColor)
	case *schoolsite.Stat:
		b.str("number", &r.Number)
		b.str("label", &r.Label)
		b.integer("order", &r.Order)
	case *schoolsite.Director:
		b.str("name", &r.Name)
		b.str("title", &r.Title)
		b.str("bio", &r.Bio)
		b.color("name_color", &r.NameColor)
		b.color("bio_color", &r.BioColor)
	case *schoolsite.ContactInfo:
		b.str("address", &r.Address)
		b.str("phone", &r.Phone)
		b.str("email", &r.Email)
		b.str("map_embed", &r.MapEmbed)
		b.color("text_color", &r.TextColor)
	case *schoolsite.Footer:
		b.str("title", &r.Title)
		b.str("body", &r.Body)
		b.str("links", &r.Links)
		if strings.TrimSpace(r.Links) != "" && !json.Valid([]byte(r.Links)) {
			b.fail("links", "must be valid JSON")
		}
	case *schoolsite.Page:
		b.str("title", &r.Title)
		b.str("slug", &r.Slug)
		b.str("body", &r.Body)
		b.integer("order", &r.Order)
		if r.Slug == "" {
			r.Slug = Slugify(r.Title)
		}
	case *schoolsite.ImageBlock:
		b.str("caption", &r.Caption)
		b.str("alt", &r.Alt)
		b.integer("order", &r.Order)
	case *schoolsite.Certificate:
		b.str("title", &r.Title)
		b.str("year", &r.Year)
		b.str("category", &r.Category)
		b.str("level", &r.Level)
		b.integer("order", &r.Order)
	default:
		return fmt.Errorf("%w: %s", schoolsite.ErrUnknownKind, rec.Kind())
	}

	for _, mf := range rec.MediaFields() {
		if f.Cleared(mf.Name) && !f.HasFile(mf.Name) {
			if ref := rec.MediaRef(mf.Name); ref != nil {
				*ref = ""
			}
		}
	}
	return b.err
}

type binder struct {
	form *MultipartForm
	err  error
}

func (b *binder) fail(field, msg string) {
	if b.err == nil {
		b.err = &schoolsite.ValidationError{Field: field, Message: msg}
	}
}

func (b *binder) str(field string, dst *string) {
	if v, ok := b.form.Value(field); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (b *binder) integer(field string, dst *int) {
	v, ok := b.form.Value(field)
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = 0
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		b.fail(field, "must be an integer")
		return
	}
	*dst = n
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// color accepts an empty value or a #rgb / #rrggbb hex color
func (b *binder) color(field string, dst *string) {
	v, ok := b.form.Value(field)
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v != "" && !colorPattern.MatchString(v) {
		b.fail(field, "must be a hex color like #1a2b3c")
		return
	}
	*dst = v
}

// ids reads a multi-valued id field; a single comma separated value works too
func (b *binder) ids(field string, dst *[]int64) {
	values := b.form.Values(field)
	if values == nil {
		return
	}
	out := []int64{}
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				b.fail(field, "must be a list of ids")
				return
			}
			out = append(out, id)
		}
	}
	*dst = out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slugify lowercases s and replaces runs of other characters with a hyphen.
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}
