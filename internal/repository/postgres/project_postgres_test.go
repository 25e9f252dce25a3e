package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"planportal/internal/model"
	"planportal/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectCols = []string{"id", "user_id", "title", "status", "project_info", "save_plot_details", "created_at", "updated_at"}

func TestProjectPostgres_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects").
			WithArgs("user-1", "submitted").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(projectCols).
			AddRow("p-1", "user-1", "House", "submitted", []byte(`{"ward":"12"}`), nil, now, now)
		mock.ExpectQuery("SELECT (.+) FROM projects").
			WithArgs("user-1", "submitted", 10, 0).
			WillReturnRows(rows)

		res, err := repo.ListByUser(ctx, "user-1", model.StatusSubmitted, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
		assert.JSONEq(t, `{"ward":"12"}`, string(res.Items[0].ProjectInfo))
		assert.Nil(t, res.Items[0].SavePlotDetails)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects").
			WillReturnError(errors.New("db error"))

		res, err := repo.ListByUser(ctx, "user-1", "", repository.PageQuery{Limit: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPostgres_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM projects").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("draft", 2).
			AddRow("approved", 1))

	counts, err := repo.CountByStatus(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, map[model.ProjectStatus]int{model.StatusDraft: 2, model.StatusApproved: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPostgres_Patch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewProjectPostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("absent document passes null", func(t *testing.T) {
		rows := sqlmock.NewRows(projectCols).
			AddRow("p-1", "user-1", "House", "draft", []byte(`{"ward":"12","zone":"B"}`), []byte(`{"area":100}`), now, now)
		mock.ExpectQuery("UPDATE projects SET project_info = CASE").
			WithArgs("p-1", []byte(`{"zone":"B"}`), nil).
			WillReturnRows(rows)

		p, err := repo.Patch(ctx, "p-1", model.ProjectPatch{ProjectInfo: json.RawMessage(`{"zone":"B"}`)})

		require.NoError(t, err)
		assert.JSONEq(t, `{"ward":"12","zone":"B"}`, string(p.ProjectInfo))
		assert.JSONEq(t, `{"area":100}`, string(p.SavePlotDetails))
	})

	t.Run("missing project", func(t *testing.T) {
		mock.ExpectQuery("UPDATE projects").
			WithArgs("p-x", nil, []byte(`{}`)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Patch(ctx, "p-x", model.ProjectPatch{SavePlotDetails: json.RawMessage(`{}`)})

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
