package postgres

import (
	"fmt"
	"strings"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// table maps one record kind onto its SQL table. Columns exclude id; values
// and dest follow the column order (dest has id first).
type table struct {
	name    string
	columns []string
	orderBy string
	values  func(rec schoolsite.Record) []interface{}
	dest    func(rec schoolsite.Record) []interface{}
}

var tables = map[schoolsite.Kind]table{
	schoolsite.KindNavLink: {
		name:    "nav_links",
		columns: []string{"name", "href", "sort_order"},
		orderBy: "sort_order, id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.NavLink)
			return []interface{}{r.Name, r.Href, r.Order}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.NavLink)
			return []interface{}{&r.ID, &r.Name, &r.Href, &r.Order}
		},
	},
	schoolsite.KindHeader: {
		name:    "headers",
		columns: []string{"logo", "phone", "email", "nav_link_ids"},
		orderBy: "id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Header)
			ids := r.NavLinkIDs
			if ids == nil {
				ids = []int64{}
			}
			return []interface{}{r.Logo, r.Phone, r.Email, ids}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Header)
			return []interface{}{&r.ID, &r.Logo, &r.Phone, &r.Email, &r.NavLinkIDs}
		},
	},
	schoolsite.KindHeroSlide: {
		name:    "hero_slides",
		columns: []string{"title", "subtitle", "image", "sort_order"},
		orderBy: "sort_order, id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.HeroSlide)
			return []interface{}{r.Title, r.Subtitle, r.Image, r.Order}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.HeroSlide)
			return []interface{}{&r.ID, &r.Title, &r.Subtitle, &r.Image, &r.Order}
		},
	},
	schoolsite.KindAbout: {
		name:    "abouts",
		columns: []string{"title", "body", "image", "title_color", "body_color"},
		orderBy: "id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.About)
			return []interface{}{r.Title, r.Body, r.Image, r.TitleColor, r.BodyColor}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.About)
			return []interface{}{&r.ID, &r.Title, &r.Body, &r.Image, &r.TitleColor, &r.BodyColor}
		},
	},
	schoolsite.KindStat: {
		name:    "stats",
		columns: []string{"number", "label", "sort_order"},
		orderBy: "sort_order, id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Stat)
			return []interface{}{r.Number, r.Label, r.Order}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Stat)
			return []interface{}{&r.ID, &r.Number, &r.Label, &r.Order}
		},
	},
	schoolsite.KindDirector: {
		name:    "directors",
		columns: []string{"name", "title", "bio", "image", "name_color", "bio_color"},
		orderBy: "id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Director)
			return []interface{}{r.Name, r.Title, r.Bio, r.Image, r.NameColor, r.BioColor}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Director)
			return []interface{}{&r.ID, &r.Name, &r.Title, &r.Bio, &r.Image, &r.NameColor, &r.BioColor}
		},
	},
	schoolsite.KindContactInfo: {
		name:    "contact_infos",
		columns: []string{"address", "phone", "email", "map_embed", "text_color"},
		orderBy: "id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.ContactInfo)
			return []interface{}{r.Address, r.Phone, r.Email, r.MapEmbed, r.TextColor}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.ContactInfo)
			return []interface{}{&r.ID, &r.Address, &r.Phone, &r.Email, &r.MapEmbed, &r.TextColor}
		},
	},
	schoolsite.KindFooter: {
		name:    "footers",
		columns: []string{"title", "body", "links"},
		orderBy: "id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Footer)
			return []interface{}{r.Title, r.Body, r.Links}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Footer)
			return []interface{}{&r.ID, &r.Title, &r.Body, &r.Links}
		},
	},
	schoolsite.KindPage: {
		name:    "pages",
		columns: []string{"slug", "title", "body", "sort_order"},
		orderBy: "sort_order, id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Page)
			return []interface{}{r.Slug, r.Title, r.Body, r.Order}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Page)
			return []interface{}{&r.ID, &r.Slug, &r.Title, &r.Body, &r.Order}
		},
	},
	schoolsite.KindImageBlock: {
		name:    "image_blocks",
		columns: []string{"page_id", "image", "caption", "alt", "sort_order"},
		orderBy: "sort_order, id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.ImageBlock)
			return []interface{}{r.PageID, r.Image, r.Caption, r.Alt, r.Order}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.ImageBlock)
			return []interface{}{&r.ID, &r.PageID, &r.Image, &r.Caption, &r.Alt, &r.Order}
		},
	},
	schoolsite.KindCertificate: {
		name:    "certificates",
		columns: []string{"title", "year", "image", "category", "level", "sort_order", "created_at", "updated_at"},
		orderBy: "sort_order, created_at DESC, id",
		values: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Certificate)
			return []interface{}{r.Title, r.Year, r.Image, r.Category, r.Level, r.Order, r.CreatedAt, r.UpdatedAt}
		},
		dest: func(rec schoolsite.Record) []interface{} {
			r := rec.(*schoolsite.Certificate)
			return []interface{}{&r.ID, &r.Title, &r.Year, &r.Image, &r.Category, &r.Level, &r.Order, &r.CreatedAt, &r.UpdatedAt}
		},
	},
}

func lookupTable(kind schoolsite.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("%w: %s", schoolsite.ErrUnknownKind, kind)
	}
	return t, nil
}

func (t table) insertSQL() string {
	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.name, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "))
}

func (t table) updateSQL() string {
	sets := make([]string, len(t.columns))
	for i, c := range t.columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+2)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", t.name, strings.Join(sets, ", "))
}

func (t table) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(t.columns, ", "), t.name)
}

// listSQL builds the SELECT for List with the filter clauses the kind supports
func (t table) listSQL(kind schoolsite.Kind, f schoolsite.ListFilter) (string, []interface{}) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	switch kind {
	case schoolsite.KindImageBlock:
		if f.PageID != 0 {
			where += fmt.Sprintf(" AND page_id = $%d", argIndex)
			args = append(args, f.PageID)
			argIndex++
		}
	case schoolsite.KindCertificate:
		if f.Category != "" {
			where += fmt.Sprintf(" AND category = $%d", argIndex)
			args = append(args, f.Category)
			argIndex++
		}
		if f.Level != "" {
			where += fmt.Sprintf(" AND level = $%d", argIndex)
			args = append(args, f.Level)
			argIndex++
		}
	}

	return fmt.Sprintf("%s WHERE %s ORDER BY %s", t.selectSQL(), where, t.orderBy), args
}
