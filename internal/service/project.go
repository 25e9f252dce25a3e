package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// recentLimit is how many projects the dashboard shows.
const recentLimit = 5

// ProjectListResult is the service-level DTO for paginated projects.
type ProjectListResult struct {
	Items []model.Project `json:"data"`
	Total int             `json:"total"`
}

// Dashboard summarizes a user's applications.
type Dashboard struct {
	Counts map[model.ProjectStatus]int `json:"counts"`
	Total  int                         `json:"total"`
	Recent []model.Project             `json:"recent"`
}

// ProjectService manages building-plan applications.
type ProjectService interface {
	Create(ctx context.Context, userID, title string, projectInfo json.RawMessage) (*model.Project, error)
	// Get returns the project if userID owns it.
	Get(ctx context.Context, userID, id string) (*model.Project, error)
	List(ctx context.Context, userID string, status model.ProjectStatus, limit, offset int) (*ProjectListResult, error)
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	// Patch merges the present documents into the project; patch.UserID must own it.
	Patch(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
}

type projectService struct {
	repo repository.ProjectRepository
	now  func() time.Time
}

// NewProjectService constructs a new ProjectService.
func NewProjectService(repo repository.ProjectRepository) ProjectService {
	return &projectService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// jsonObject reports whether raw is a JSON object. Empty raw is absent, not invalid.
func jsonObject(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrInvalidJSON
	}
	return nil
}

func (s *projectService) Create(ctx context.Context, userID, title string, projectInfo json.RawMessage) (*model.Project, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if err := jsonObject(projectInfo); err != nil {
		return nil, fmt.Errorf("project_info: %w", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled application"
	}
	return s.repo.Create(ctx, &model.Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Status:      model.StatusDraft,
		ProjectInfo: projectInfo,
		CreatedAt:   s.now(),
	})
}

func (s *projectService) Get(ctx context.Context, userID, id string) (*model.Project, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, userID string, status model.ProjectStatus, limit, offset int) (*ProjectListResult, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	limit, offset = clampPage(limit, offset)
	res, err := s.repo.ListByUser(ctx, userID, status, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ProjectListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *projectService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Counts: make(map[model.ProjectStatus]int, len(model.ProjectStatuses))}
	for _, st := range model.ProjectStatuses {
		d.Counts[st] = counts[st]
		d.Total += counts[st]
	}

	recent, err := s.repo.ListByUser(ctx, userID, "", repository.PageQuery{Limit: recentLimit})
	if err != nil {
		return nil, err
	}
	d.Recent = recent.Items
	return d, nil
}

func (s *projectService) Patch(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if id == "" || patch.UserID == "" {
		return nil, ErrIDRequired
	}
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if err := jsonObject(patch.ProjectInfo); err != nil {
		return nil, fmt.Errorf("project_info: %w", err)
	}
	if err := jsonObject(patch.SavePlotDetails); err != nil {
		return nil, fmt.Errorf("save_plot_details: %w", err)
	}
	if _, err := s.Get(ctx, patch.UserID, id); err != nil {
		return nil, err
	}
	p, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}
