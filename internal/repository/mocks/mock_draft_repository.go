package mocks

import (
	"context"

	"planportal/internal/model"
	"planportal/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDraftRepository struct {
	mock.Mock
}

var _ repository.DraftRepository = (*MockDraftRepository)(nil)

func (m *MockDraftRepository) Get(ctx context.Context, userID, formKey string) (*model.Draft, error) {
	args := m.Called(ctx, userID, formKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftRepository) Upsert(ctx context.Context, d *model.Draft) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDraftRepository) Delete(ctx context.Context, userID, formKey string) error {
	args := m.Called(ctx, userID, formKey)
	return args.Error(0)
}
