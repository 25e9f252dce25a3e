package repository

import (
	"context"
	"time"

	"planportal/internal/model"
)

// UserRepository persists auth users and their metadata.
type UserRepository interface {
	// Create inserts a user. Empty email/phone/login_id are stored as NULL.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByLoginID(ctx context.Context, loginID string) (*model.User, error)

	// Update writes the mutable columns: email, phone, login_id, role, metadata.
	Update(ctx context.Context, u *model.User) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// MarkVerified binds contact to the user on the channel's column and
	// stamps its verification time.
	MarkVerified(ctx context.Context, id string, channel model.OTPChannel, contact string, at time.Time) error
}

// RefreshTokenRepository stores hashed refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
}
