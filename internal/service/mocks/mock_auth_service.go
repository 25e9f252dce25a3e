package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"planportal/internal/model"
	"planportal/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

var _ service.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) SignInWithPassword(ctx context.Context, login, password string) (*model.Session, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) UpdatePassword(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

func (m *MockAuthService) SendOTP(ctx context.Context, channel model.OTPChannel, contact string, createUser bool) (*service.OTPSent, error) {
	args := m.Called(ctx, channel, contact, createUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OTPSent), args.Error(1)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, channel model.OTPChannel, contact, code string) (*model.Verification, error) {
	args := m.Called(ctx, channel, contact, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Verification), args.Error(1)
}

func (m *MockAuthService) Verified(ctx context.Context, channel model.OTPChannel, contact, token string) (model.Identity, error) {
	args := m.Called(ctx, channel, contact, token)
	return args.Get(0).(model.Identity), args.Error(1)
}
