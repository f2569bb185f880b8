// Package repo holds helpers shared by the repository implementations.
package repo

import (
	"sort"

	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Sort orders records of one kind the way List returns them: by display
// order for ordered kinds (certificates then newest first), by ID otherwise.
func Sort(records []schoolsite.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}

// Less reports whether a sorts before b. Both must be of the same kind.
func Less(a, b schoolsite.Record) bool {
	oa, okA := displayOrder(a)
	ob, okB := displayOrder(b)
	if okA && okB && oa != ob {
		return oa < ob
	}
	if ca, ok := a.(*schoolsite.Certificate); ok {
		cb := b.(*schoolsite.Certificate)
		if !ca.CreatedAt.Equal(cb.CreatedAt) {
			return ca.CreatedAt.After(cb.CreatedAt)
		}
	}
	return a.GetID() < b.GetID()
}

func displayOrder(rec schoolsite.Record) (int, bool) {
	switch r := rec.(type) {
	case *schoolsite.NavLink:
		return r.Order, true
	case *schoolsite.HeroSlide:
		return r.Order, true
	case *schoolsite.Stat:
		return r.Order, true
	case *schoolsite.Page:
		return r.Order, true
	case *schoolsite.ImageBlock:
		return r.Order, true
	case *schoolsite.Certificate:
		return r.Order, true
	}
	return 0, false
}

// Matches reports whether rec passes the filter.
func Matches(rec schoolsite.Record, f schoolsite.ListFilter) bool {
	switch r := rec.(type) {
	case *schoolsite.ImageBlock:
		return f.PageID == 0 || r.PageID == f.PageID
	case *schoolsite.Certificate:
		if f.Category != "" && r.Category != f.Category {
			return false
		}
		if f.Level != "" && r.Level != f.Level {
			return false
		}
	}
	return true
}
