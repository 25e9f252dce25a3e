package repository

import (
	"context"

	"planportal/internal/model"
)

// ProjectRepository persists application records.
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// ListByUser pages the user's projects, newest first. An empty status
	// lists all.
	ListByUser(ctx context.Context, userID string, status model.ProjectStatus, pq PageQuery) (*PageResult[model.Project], error)

	CountByStatus(ctx context.Context, userID string) (map[model.ProjectStatus]int, error)

	// Patch merges the present documents into the stored ones.
	Patch(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
}
