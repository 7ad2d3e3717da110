package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

var (
	// ErrInvalidID marks an identifier that does not parse as a UUID. It is
	// detected before any store access and maps to a 400, never a 404.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound marks a well-formed identifier with no matching record.
	ErrNotFound = errors.New("not found")
	// ErrTooLarge marks an attachment payload over the configured size limit.
	ErrTooLarge = errors.New("payload too large")
	// ErrReaderNil marks a missing upload body.
	ErrReaderNil = errors.New("reader is nil")
)

// DocumentService defines the use cases for handling document records.
type DocumentService interface {
	// Create stores a new document with a server-assigned id and returns that id.
	// Any client-supplied id is ignored by construction: DocumentInput has none.
	Create(ctx context.Context, in model.DocumentInput) (string, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns all documents in store-default order.
	List(ctx context.Context) ([]model.Document, error)

	// Search returns documents matching term case-insensitively as a substring
	// of title, content, or any tag. An empty term matches everything.
	Search(ctx context.Context, term string) ([]model.Document, error)

	// Update fully replaces the mutable fields of the document with the given id.
	Update(ctx context.Context, id string, in model.DocumentInput) error

	// Delete removes the document with the given id. It does not touch
	// attachments; document and attachment deletion are independent operations
	// composed by the caller.
	Delete(ctx context.Context, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(repo repository.DocumentRepository) DocumentService {
	return &documentService{repo: repo}
}

// parseID validates an identifier without touching the store.
func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *documentService) Create(ctx context.Context, in model.DocumentInput) (string, error) {
	// Empty title/content are stored as-is; the store imposes no trimming rules.
	doc := &model.Document{
		ID:      uuid.New().String(),
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
		Summary: in.Summary,
		Rating:  in.Rating,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return stored.ID, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *documentService) Search(ctx context.Context, term string) ([]model.Document, error) {
	docs, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return docs, nil
}

func (s *documentService) Update(ctx context.Context, id string, in model.DocumentInput) error {
	if err := parseID(id); err != nil {
		return err
	}
	doc := &model.Document{
		ID:      id,
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
		Summary: in.Summary,
		Rating:  in.Rating,
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("update document %s: %w", id, err)
	}
	return nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}
