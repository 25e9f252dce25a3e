package mocks

import (
	"context"

	"planportal/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, channel model.OTPChannel, contact, code string) error {
	args := m.Called(ctx, channel, contact, code)
	return args.Error(0)
}
