package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"planportal/internal/model"
	"planportal/internal/service"
)

type MockUploadService struct {
	mock.Mock
}

var _ service.UploadService = (*MockUploadService)(nil)

func (m *MockUploadService) Upload(ctx context.Context, userID string, purpose model.DocumentPurpose, filename, contentType string, r io.Reader) (*model.StoredFile, error) {
	args := m.Called(ctx, userID, purpose, filename, contentType, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

// Replace runs commit with the returned file when the expectation succeeds,
// mirroring the real service.
func (m *MockUploadService) Replace(ctx context.Context, userID string, purpose model.DocumentPurpose, filename, contentType string, r io.Reader, previousPath string, commit service.CommitFunc) (*model.StoredFile, error) {
	args := m.Called(ctx, userID, purpose, filename, contentType, r, previousPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	f := args.Get(0).(*model.StoredFile)
	if commit != nil && args.Error(1) == nil {
		if err := commit(ctx, f); err != nil {
			return nil, err
		}
	}
	return f, args.Error(1)
}

func (m *MockUploadService) Rollback(ctx context.Context, paths []string) error {
	return m.Called(ctx, paths).Error(0)
}

func (m *MockUploadService) Verify(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *MockUploadService) Delete(ctx context.Context, userID, path string) error {
	return m.Called(ctx, userID, path).Error(0)
}

func (m *MockUploadService) List(ctx context.Context, userID string, limit, offset int) (*service.FileListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}
