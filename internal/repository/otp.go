package repository

import (
	"context"
	"time"

	"planportal/internal/model"
)

// OTPRepository stores issued one-time code challenges.
type OTPRepository interface {
	Create(ctx context.Context, c *model.OTPChallenge) error

	// FindLatest returns the most recently issued challenge for the contact,
	// consumed or not.
	FindLatest(ctx context.Context, channel model.OTPChannel, contact string) (*model.OTPChallenge, error)

	// FindActive returns the newest unconsumed, unexpired challenge.
	FindActive(ctx context.Context, channel model.OTPChannel, contact string, now time.Time) (*model.OTPChallenge, error)

	IncrementAttempts(ctx context.Context, id string) error
	Consume(ctx context.Context, id string, at time.Time) error
}
