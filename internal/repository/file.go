package repository

import (
	"context"

	"planportal/internal/model"
)

// FileRepository records objects written by uploads so they can be listed
// per user. Object storage stays the source of truth for existence.
type FileRepository interface {
	// Create records the file; recording the same storage path twice is a no-op.
	Create(ctx context.Context, userID string, f model.StoredFile) error
	ListByUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.StoredFile], error)
	// DeleteByPath removes the record. It returns nil if none existed.
	DeleteByPath(ctx context.Context, path string) error
}
