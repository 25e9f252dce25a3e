package mocks

import (
	"context"

	"planportal/internal/model"
	"planportal/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

var _ repository.FileRepository = (*MockFileRepository)(nil)

func (m *MockFileRepository) Create(ctx context.Context, userID string, f model.StoredFile) error {
	args := m.Called(ctx, userID, f)
	return args.Error(0)
}

func (m *MockFileRepository) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.StoredFile], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.StoredFile]), args.Error(1)
}

func (m *MockFileRepository) DeleteByPath(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
