package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

const attachmentContentType = "application/pdf"

// AttachmentService defines the use cases for the single-PDF attachment of a
// document. It keeps the metadata record and the physical blob in lockstep:
// no successful operation leaves a blob without a record or a record whose
// blob was knowingly lost.
type AttachmentService interface {
	// Upload stores the payload as a new blob under a server-generated name and
	// writes the attachment record. A previous attachment for the same document
	// is discarded (record and blob) before the new one is written; uploads and
	// deletes for the same document are serialized.
	Upload(ctx context.Context, documentID string, r io.Reader, size int64) (*model.Attachment, error)

	// Fetch streams the blob attached to the document. The caller must close
	// the returned reader.
	Fetch(ctx context.Context, documentID string) (io.ReadCloser, *model.Attachment, error)

	// PresignFetch returns a time-limited download URL for the attached blob.
	PresignFetch(ctx context.Context, documentID string, expiry time.Duration) (string, error)

	// Delete removes the attachment: blob first, then the record. If the blob
	// cannot be deleted the record is kept as a visible trace of the failure.
	Delete(ctx context.Context, documentID string) error
}

// attachmentService is a concrete implementation of AttachmentService.
type attachmentService struct {
	store    storage.Storage
	repo     repository.AttachmentRepository
	maxBytes int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAttachmentService constructs a new AttachmentService. maxBytes is the
// upload size limit; payloads over it are rejected before any write.
func NewAttachmentService(store storage.Storage, repo repository.AttachmentRepository, maxBytes int64) AttachmentService {
	return &attachmentService{
		store:    store,
		repo:     repo,
		maxBytes: maxBytes,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockDocument serializes attachment mutations per document id. The mutex map
// only grows; entries are a mutex each and documents are not unbounded in
// practice.
func (s *attachmentService) lockDocument(documentID string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[documentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[documentID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}

func blobKey(attachmentID string) string {
	return "attachments/" + attachmentID + ".pdf"
}

func (s *attachmentService) Upload(ctx context.Context, documentID string, r io.Reader, size int64) (*model.Attachment, error) {
	if err := parseID(documentID); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if size < 0 || size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, s.maxBytes)
	}

	l := s.lockDocument(documentID)
	defer l.Unlock()

	// Discard the previous binding first so a re-upload cannot leave an
	// orphaned blob behind.
	prev, err := s.repo.FindLatestByDocumentID(ctx, documentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find previous attachment: %w", err)
	}
	if prev != nil {
		if err := s.store.Delete(ctx, prev.StorageName); err != nil {
			return nil, fmt.Errorf("delete previous blob: %w", err)
		}
		if err := s.repo.Delete(ctx, prev.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delete previous attachment record: %w", err)
		}
	}

	// Fresh id, storage name derived from it only. Client input never reaches
	// the blob key.
	id := uuid.New().String()
	key := blobKey(id)

	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: attachmentContentType,
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	att := &model.Attachment{
		ID:          id,
		DocumentID:  documentID,
		StorageName: key,
		UploadedAt:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, att)
	if err != nil {
		// Rollback: delete the object from storage so no orphan blob remains.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *attachmentService) Fetch(ctx context.Context, documentID string) (io.ReadCloser, *model.Attachment, error) {
	if err := parseID(documentID); err != nil {
		return nil, nil, err
	}
	att, err := s.repo.FindLatestByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("attachment for document %s: %w", documentID, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("find attachment: %w", err)
	}
	rc, _, err := s.store.Get(ctx, att.StorageName)
	if err != nil {
		// Fetch promises a stream or NotFound; a record whose blob cannot be
		// read is reported the same way as a missing record.
		return nil, nil, fmt.Errorf("blob %s unavailable: %w", att.StorageName, ErrNotFound)
	}
	return rc, att, nil
}

func (s *attachmentService) PresignFetch(ctx context.Context, documentID string, expiry time.Duration) (string, error) {
	if err := parseID(documentID); err != nil {
		return "", err
	}
	att, err := s.repo.FindLatestByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("attachment for document %s: %w", documentID, ErrNotFound)
		}
		return "", fmt.Errorf("find attachment: %w", err)
	}
	u, err := s.store.PresignGet(ctx, att.StorageName, expiry)
	if err != nil {
		return "", fmt.Errorf("presign blob %s: %w", att.StorageName, err)
	}
	return u, nil
}

func (s *attachmentService) Delete(ctx context.Context, documentID string) error {
	if err := parseID(documentID); err != nil {
		return err
	}

	l := s.lockDocument(documentID)
	defer l.Unlock()

	att, err := s.repo.FindLatestByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("attachment for document %s: %w", documentID, ErrNotFound)
		}
		return fmt.Errorf("find attachment: %w", err)
	}

	// Blob first. Deleting the record first would leak an undiscoverable blob;
	// failing here keeps the record so the problem stays visible.
	if err := s.store.Delete(ctx, att.StorageName); err != nil {
		return fmt.Errorf("delete blob %s: %w", att.StorageName, err)
	}

	// A concurrent delete may have removed the record already; that is fine,
	// the blob is gone either way.
	if err := s.repo.Delete(ctx, att.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("delete attachment record: %w", err)
	}
	return nil
}
