package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/repo"
)

// Repository implements schoolsite.Repository using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	records map[schoolsite.Kind]map[int64]schoolsite.Record
	nextID  map[schoolsite.Kind]int64
}

var _ schoolsite.Repository = (*Repository)(nil)

// New creates a new in-memory repository
func New() *Repository {
	r := &Repository{
		records: make(map[schoolsite.Kind]map[int64]schoolsite.Record),
		nextID:  make(map[schoolsite.Kind]int64),
	}
	for _, k := range schoolsite.Kinds {
		r.records[k] = make(map[int64]schoolsite.Record)
	}
	return r
}

func (r *Repository) Save(ctx context.Context, rec schoolsite.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(rec)
}

// save stores a copy of rec; callers hold the write lock
func (r *Repository) save(rec schoolsite.Record) error {
	table, ok := r.records[rec.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", schoolsite.ErrUnknownKind, rec.Kind())
	}

	if err := r.checkConstraints(rec); err != nil {
		return err
	}

	if rec.GetID() == 0 {
		r.nextID[rec.Kind()]++
		rec.SetID(r.nextID[rec.Kind()])
	} else if _, exists := table[rec.GetID()]; !exists {
		return schoolsite.ErrRecordNotFound
	}

	// Create a copy to avoid external modifications
	table[rec.GetID()] = schoolsite.CloneRecord(rec)
	return nil
}

func (r *Repository) checkConstraints(rec schoolsite.Record) error {
	switch v := rec.(type) {
	case *schoolsite.Page:
		for id, other := range r.records[schoolsite.KindPage] {
			if id != v.ID && other.(*schoolsite.Page).Slug == v.Slug {
				return fmt.Errorf("%w: page slug %q", schoolsite.ErrDuplicate, v.Slug)
			}
		}
	case *schoolsite.ImageBlock:
		if _, ok := r.records[schoolsite.KindPage][v.PageID]; !ok {
			return fmt.Errorf("%w: page %d", schoolsite.ErrRecordNotFound, v.PageID)
		}
	case *schoolsite.Header:
		for _, id := range v.NavLinkIDs {
			if _, ok := r.records[schoolsite.KindNavLink][id]; !ok {
				return fmt.Errorf("%w: nav link %d", schoolsite.ErrRecordNotFound, id)
			}
		}
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, kind schoolsite.Kind, id int64) (schoolsite.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.records[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schoolsite.ErrUnknownKind, kind)
	}
	rec, exists := table[id]
	if !exists {
		return nil, schoolsite.ErrRecordNotFound
	}
	// Return a copy to prevent external modifications
	return schoolsite.CloneRecord(rec), nil
}

func (r *Repository) List(ctx context.Context, kind schoolsite.Kind, filter schoolsite.ListFilter) ([]schoolsite.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.records[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schoolsite.ErrUnknownKind, kind)
	}

	out := make([]schoolsite.Record, 0, len(table))
	for _, rec := range table {
		if repo.Matches(rec, filter) {
			out = append(out, schoolsite.CloneRecord(rec))
		}
	}
	repo.Sort(out)
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, kind schoolsite.Kind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.delete(kind, id)
}

func (r *Repository) delete(kind schoolsite.Kind, id int64) error {
	table, ok := r.records[kind]
	if !ok {
		return fmt.Errorf("%w: %s", schoolsite.ErrUnknownKind, kind)
	}
	if _, exists := table[id]; !exists {
		return schoolsite.ErrRecordNotFound
	}
	delete(table, id)

	switch kind {
	case schoolsite.KindPage:
		// Image blocks belong to their page
		for bid, rec := range r.records[schoolsite.KindImageBlock] {
			if rec.(*schoolsite.ImageBlock).PageID == id {
				delete(r.records[schoolsite.KindImageBlock], bid)
			}
		}
	case schoolsite.KindNavLink:
		for _, rec := range r.records[schoolsite.KindHeader] {
			h := rec.(*schoolsite.Header)
			kept := h.NavLinkIDs[:0]
			for _, nid := range h.NavLinkIDs {
				if nid != id {
					kept = append(kept, nid)
				}
			}
			h.NavLinkIDs = kept
		}
	}
	return nil
}

func (r *Repository) SavePageWithImages(ctx context.Context, page *schoolsite.Page, images []*schoolsite.ImageBlock, deleted []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate everything before the first write so a failure leaves no trace
	if err := r.checkConstraints(page); err != nil {
		return err
	}
	if page.ID != 0 {
		if _, ok := r.records[schoolsite.KindPage][page.ID]; !ok {
			return schoolsite.ErrRecordNotFound
		}
	}
	for _, img := range images {
		if img.ID == 0 {
			continue
		}
		existing, ok := r.records[schoolsite.KindImageBlock][img.ID]
		if !ok || (page.ID != 0 && existing.(*schoolsite.ImageBlock).PageID != page.ID) {
			return fmt.Errorf("%w: image block %d", schoolsite.ErrRecordNotFound, img.ID)
		}
	}
	for _, id := range deleted {
		existing, ok := r.records[schoolsite.KindImageBlock][id]
		if !ok || existing.(*schoolsite.ImageBlock).PageID != page.ID {
			return fmt.Errorf("%w: image block %d", schoolsite.ErrRecordNotFound, id)
		}
	}

	if err := r.save(page); err != nil {
		return err
	}
	for _, id := range deleted {
		delete(r.records[schoolsite.KindImageBlock], id)
	}
	for _, img := range images {
		img.PageID = page.ID
		if err := r.save(img); err != nil {
			return err
		}
	}
	return nil
}
