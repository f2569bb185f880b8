package schoolsite

import (
	"context"
)

// Service defines the main interface for managing site content
type Service interface {
	// Record operations
	Get(ctx context.Context, kind Kind, id int64) (Record, error)
	List(ctx context.Context, kind Kind, filter ListFilter) ([]Record, error)
	Delete(ctx context.Context, kind Kind, id int64) error

	// SaveRecord stores submitted media and persists a top-level record.
	// Media failures are reported as warnings and never abort the save.
	SaveRecord(ctx context.Context, rec Record, form Form) (*SaveResult, error)

	// SavePage stores media for a page and its image blocks, then persists
	// them together. The first image block whose media cannot be stored
	// aborts the whole batch and nothing is persisted.
	SavePage(ctx context.Context, page *Page, form Form, children []ChildForm) (*SaveResult, error)

	// ResolveURL returns the client-facing URL of a record's media field.
	ResolveURL(rec Record, field string) string
}

// ChildForm is one row of an inline image block formset.
type ChildForm struct {
	Record *ImageBlock
	Form   Form
	Delete bool
}

// SaveResult carries the persisted records and any non-fatal warnings.
type SaveResult struct {
	Record   Record        `json:"record"`
	Children []*ImageBlock `json:"children,omitempty"`
	Warnings []Warning     `json:"warnings,omitempty"`
}
