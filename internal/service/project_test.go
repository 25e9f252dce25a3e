package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"planportal/internal/model"
	"planportal/internal/repository"
	repoMocks "planportal/internal/repository/mocks"
)

func newTestProjects() (*projectService, *repoMocks.MockProjectRepository) {
	repo := new(repoMocks.MockProjectRepository)
	svc := NewProjectService(repo).(*projectService)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestProjects()

	repo.On("Create", ctx, mock.MatchedBy(func(p *model.Project) bool {
		return p.UserID == "u1" && p.Status == model.StatusDraft && p.Title == "Untitled application" && p.ID != ""
	})).Return(&model.Project{ID: "p1", Status: model.StatusDraft}, nil)

	p, err := svc.Create(ctx, "u1", "  ", json.RawMessage(`{"ward":"12"}`))
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = svc.Create(ctx, "u1", "x", json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(repo *repoMocks.MockProjectRepository)
		wantErr    error
	}{
		{
			name: "owner",
			setupMocks: func(repo *repoMocks.MockProjectRepository) {
				repo.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u1"}, nil)
			},
		},
		{
			name: "someone else's project",
			setupMocks: func(repo *repoMocks.MockProjectRepository) {
				repo.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u2"}, nil)
			},
			wantErr: ErrProjectNotFound,
		},
		{
			name: "missing",
			setupMocks: func(repo *repoMocks.MockProjectRepository) {
				repo.On("FindByID", ctx, "p1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestProjects()
			tt.setupMocks(repo)

			p, err := svc.Get(ctx, "u1", "p1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p1", p.ID)
		})
	}
}

func TestProjectService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestProjects()

	repo.On("ListByUser", ctx, "u1", model.StatusApproved, repository.PageQuery{Limit: 100, Offset: 0}).
		Return(&repository.PageResult[model.Project]{Items: []model.Project{{ID: "p1"}}, Total: 1}, nil)

	res, err := svc.List(ctx, "u1", model.StatusApproved, 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	_, err = svc.List(ctx, "u1", "archived", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestProjectService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestProjects()

	repo.On("CountByStatus", ctx, "u1").Return(map[model.ProjectStatus]int{
		model.StatusDraft:    2,
		model.StatusApproved: 1,
	}, nil)
	repo.On("ListByUser", ctx, "u1", model.ProjectStatus(""), repository.PageQuery{Limit: 5}).
		Return(&repository.PageResult[model.Project]{Items: []model.Project{{ID: "p3"}, {ID: "p2"}}, Total: 3}, nil)

	d, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Total)
	assert.Len(t, d.Counts, len(model.ProjectStatuses))
	assert.Equal(t, 0, d.Counts[model.StatusRejected])
	assert.Equal(t, 2, d.Counts[model.StatusDraft])
	assert.Len(t, d.Recent, 2)
}

func TestProjectService_Patch(t *testing.T) {
	ctx := context.Background()
	info := json.RawMessage(`{"plot_area":"240"}`)

	tests := []struct {
		name       string
		patch      model.ProjectPatch
		setupMocks func(repo *repoMocks.MockProjectRepository)
		wantErr    error
	}{
		{
			name:  "merges project info",
			patch: model.ProjectPatch{UserID: "u1", ProjectInfo: info},
			setupMocks: func(repo *repoMocks.MockProjectRepository) {
				repo.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u1"}, nil)
				repo.On("Patch", ctx, "p1", model.ProjectPatch{UserID: "u1", ProjectInfo: info}).
					Return(&model.Project{ID: "p1", ProjectInfo: info}, nil)
			},
		},
		{
			name:       "empty patch",
			patch:      model.ProjectPatch{UserID: "u1"},
			setupMocks: func(repo *repoMocks.MockProjectRepository) {},
			wantErr:    ErrEmptyPatch,
		},
		{
			name:       "plot details must be an object",
			patch:      model.ProjectPatch{UserID: "u1", SavePlotDetails: json.RawMessage(`"x"`)},
			setupMocks: func(repo *repoMocks.MockProjectRepository) {},
			wantErr:    ErrInvalidJSON,
		},
		{
			name:  "not the owner",
			patch: model.ProjectPatch{UserID: "u2", ProjectInfo: info},
			setupMocks: func(repo *repoMocks.MockProjectRepository) {
				repo.On("FindByID", ctx, "p1").Return(&model.Project{ID: "p1", UserID: "u1"}, nil)
			},
			wantErr: ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestProjects()
			tt.setupMocks(repo)

			p, err := svc.Patch(ctx, "p1", tt.patch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, `{"plot_area":"240"}`, string(p.ProjectInfo))
			repo.AssertExpectations(t)
		})
	}
}
