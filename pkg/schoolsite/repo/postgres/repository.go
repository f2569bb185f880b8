package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements schoolsite.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

var _ schoolsite.Repository = (*Repository)(nil)

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables when they do not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", schoolsite.ErrDuplicate, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced by %s", schoolsite.ErrRecordNotFound, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return &schoolsite.ValidationError{Field: pgErr.ColumnName, Message: "this field is required"}
		case "23514": // check_violation
			return &schoolsite.ValidationError{Field: pgErr.ConstraintName, Message: pgErr.Message}
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return schoolsite.ErrRecordNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) Save(ctx context.Context, rec schoolsite.Record) error {
	return r.save(ctx, r.db, rec)
}

func (r *Repository) save(ctx context.Context, db DBTX, rec schoolsite.Record) error {
	t, err := lookupTable(rec.Kind())
	if err != nil {
		return err
	}

	if rec.GetID() == 0 {
		var id int64
		if err := db.QueryRow(ctx, t.insertSQL(), t.values(rec)...).Scan(&id); err != nil {
			return r.handlePostgresError("insert "+t.name, err)
		}
		rec.SetID(id)
		return nil
	}

	args := append([]interface{}{rec.GetID()}, t.values(rec)...)
	tag, err := db.Exec(ctx, t.updateSQL(), args...)
	if err != nil {
		return r.handlePostgresError("update "+t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return schoolsite.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, kind schoolsite.Kind, id int64) (schoolsite.Record, error) {
	t, err := lookupTable(kind)
	if err != nil {
		return nil, err
	}
	rec, err := schoolsite.NewRecord(kind)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, t.selectSQL()+" WHERE id = $1", id).Scan(t.dest(rec)...)
	if err != nil {
		return nil, r.handlePostgresError("get "+t.name, err)
	}
	return rec, nil
}

func (r *Repository) List(ctx context.Context, kind schoolsite.Kind, filter schoolsite.ListFilter) ([]schoolsite.Record, error) {
	t, err := lookupTable(kind)
	if err != nil {
		return nil, err
	}

	query, args := t.listSQL(kind, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list "+t.name, err)
	}
	defer rows.Close()

	var out []schoolsite.Record
	for rows.Next() {
		rec, err := schoolsite.NewRecord(kind)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(t.dest(rec)...); err != nil {
			return nil, r.handlePostgresError("scan "+t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list "+t.name, err)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, kind schoolsite.Kind, id int64) error {
	t, err := lookupTable(kind)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if kind == schoolsite.KindNavLink {
			_, err := tx.Exec(ctx, `UPDATE headers SET nav_link_ids = array_remove(nav_link_ids, $1)`, id)
			if err != nil {
				return r.handlePostgresError("detach nav link", err)
			}
		}
		// image_blocks rows go with their page through ON DELETE CASCADE
		tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
		if err != nil {
			return r.handlePostgresError("delete "+t.name, err)
		}
		if tag.RowsAffected() == 0 {
			return schoolsite.ErrRecordNotFound
		}
		return nil
	})
}

func (r *Repository) SavePageWithImages(ctx context.Context, page *schoolsite.Page, images []*schoolsite.ImageBlock, deleted []int64) error {
	// IDs are assigned inside the transaction; restore them if it rolls back
	pageID := page.ID
	imageIDs := make([]int64, len(images))
	for i, img := range images {
		imageIDs[i] = img.ID
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := r.save(ctx, tx, page); err != nil {
			return err
		}
		if len(deleted) > 0 {
			tag, err := tx.Exec(ctx, `DELETE FROM image_blocks WHERE page_id = $1 AND id = ANY($2)`, page.ID, deleted)
			if err != nil {
				return r.handlePostgresError("delete image blocks", err)
			}
			if int(tag.RowsAffected()) != len(deleted) {
				return fmt.Errorf("%w: image blocks of page %d", schoolsite.ErrRecordNotFound, page.ID)
			}
		}
		for _, img := range images {
			img.PageID = page.ID
			if err := r.save(ctx, tx, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		page.ID = pageID
		for i, img := range images {
			img.ID = imageIDs[i]
		}
		return err
	}
	return nil
}
