package mocks

import (
	"context"
	"time"

	"planportal/internal/model"
	"planportal/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOTPRepository struct {
	mock.Mock
}

var _ repository.OTPRepository = (*MockOTPRepository)(nil)

func (m *MockOTPRepository) Create(ctx context.Context, c *model.OTPChallenge) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockOTPRepository) FindLatest(ctx context.Context, channel model.OTPChannel, contact string) (*model.OTPChallenge, error) {
	args := m.Called(ctx, channel, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OTPChallenge), args.Error(1)
}

func (m *MockOTPRepository) FindActive(ctx context.Context, channel model.OTPChannel, contact string, now time.Time) (*model.OTPChallenge, error) {
	args := m.Called(ctx, channel, contact, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OTPChallenge), args.Error(1)
}

func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOTPRepository) Consume(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
