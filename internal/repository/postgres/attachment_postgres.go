package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// AttachmentPostgres is a PostgreSQL implementation of repository.AttachmentRepository.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

const attachmentColumns = "id, document_id, storage_name, uploaded_at"

// Create inserts a new attachment row and returns the stored record.
func (r *AttachmentPostgres) Create(ctx context.Context, att *model.Attachment) (*model.Attachment, error) {
	const q = `
		INSERT INTO attachments (id, document_id, storage_name, uploaded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + attachmentColumns
	row := r.db.QueryRowContext(ctx, q,
		att.ID,
		att.DocumentID,
		att.StorageName,
		att.UploadedAt,
	)
	var out model.Attachment
	if err := row.Scan(
		&out.ID,
		&out.DocumentID,
		&out.StorageName,
		&out.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindLatestByDocumentID returns the newest attachment record for a document.
func (r *AttachmentPostgres) FindLatestByDocumentID(ctx context.Context, documentID string) (*model.Attachment, error) {
	const q = `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE document_id = $1
		ORDER BY uploaded_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, q, documentID)
	var a model.Attachment
	if err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.StorageName,
		&a.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an attachment record by its own ID.
func (r *AttachmentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM attachments WHERE id = $1`
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
