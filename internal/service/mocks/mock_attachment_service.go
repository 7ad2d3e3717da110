package mocks

import (
	"context"
	"io"
	"time"

	"docvault/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Upload(ctx context.Context, documentID string, r io.Reader, size int64) (*model.Attachment, error) {
	args := m.Called(ctx, documentID, r, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Fetch(ctx context.Context, documentID string) (io.ReadCloser, *model.Attachment, error) {
	args := m.Called(ctx, documentID)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var att *model.Attachment
	if args.Get(1) != nil {
		att = args.Get(1).(*model.Attachment)
	}
	return rc, att, args.Error(2)
}

func (m *MockAttachmentService) PresignFetch(ctx context.Context, documentID string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, documentID, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}
