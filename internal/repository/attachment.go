package repository

import (
	"context"

	"docvault/internal/model"
)

// AttachmentRepository defines data access for attachment metadata records.
// Every record binds a document to exactly one blob via its storage name.
type AttachmentRepository interface {
	// Create inserts a new attachment record and returns the stored row.
	Create(ctx context.Context, att *model.Attachment) (*model.Attachment, error)

	// FindLatestByDocumentID returns the most recently uploaded attachment
	// record for the given document. Returns sql.ErrNoRows if none exists.
	FindLatestByDocumentID(ctx context.Context, documentID string) (*model.Attachment, error)

	// Delete removes an attachment record by its own ID (not the document ID).
	// Returns sql.ErrNoRows if no row matched.
	Delete(ctx context.Context, id string) error
}
