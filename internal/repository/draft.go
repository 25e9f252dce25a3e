package repository

import (
	"context"

	"planportal/internal/model"
)

// DraftRepository keeps one draft per user and form key.
type DraftRepository interface {
	Get(ctx context.Context, userID, formKey string) (*model.Draft, error)
	Upsert(ctx context.Context, d *model.Draft) error
	// Delete removes the draft. It returns nil if none existed.
	Delete(ctx context.Context, userID, formKey string) error
}
