package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
//
// Not-found is reported as sql.ErrNoRows by implementations; the service layer
// translates it into its own typed error.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	// The caller provides the server-assigned ID.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns all documents in store-default order.
	List(ctx context.Context) ([]model.Document, error)

	// Search returns every document where term matches case-insensitively as a
	// substring of the title, the content, or any tag element. It must be a
	// single combined query so a document matching on several fields appears
	// exactly once. An empty term matches everything.
	Search(ctx context.Context, term string) ([]model.Document, error)

	// Update replaces title, content, tags, summary, and rating of the row
	// identified by doc.ID. Returns sql.ErrNoRows if no row matched.
	Update(ctx context.Context, doc *model.Document) error

	// Delete removes a document by ID. Returns sql.ErrNoRows if no row matched.
	Delete(ctx context.Context, id string) error
}
