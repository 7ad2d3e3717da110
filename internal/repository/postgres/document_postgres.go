package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Tags are stored as a JSONB array so element order and duplicates survive the
// round trip.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = "id, title, content, tags, summary, rating"

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var (
		d       model.Document
		rawTags []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Content,
		&rawTags,
		&d.Summary,
		&d.Rating,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawTags, &d.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, content, tags, summary, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + documentColumns
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		tags,
		doc.Summary,
		doc.Rating,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns all documents in store-default order.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// escapeLike neutralizes LIKE metacharacters so the term is matched as a plain
// substring.
func escapeLike(term string) string {
	repl := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return repl.Replace(term)
}

// Search runs a single combined case-insensitive substring query over title,
// content, and the elements of tags. One row per document, so no duplicates
// even when several fields match.
func (r *DocumentPostgres) Search(ctx context.Context, term string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.title ILIKE $1
		   OR d.content ILIKE $1
		   OR EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(d.tags) AS t(value)
			WHERE t.value ILIKE $1
		   )
	`
	pattern := "%" + escapeLike(term) + "%"
	rows, err := r.db.QueryContext(ctx, q, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces all mutable fields of the row identified by doc.ID.
// The ID itself is never changed.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) error {
	const q = `
		UPDATE documents
		SET title = $2, content = $3, tags = $4, summary = $5, rating = $6
		WHERE id = $1
	`
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		tags,
		doc.Summary,
		doc.Rating,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
