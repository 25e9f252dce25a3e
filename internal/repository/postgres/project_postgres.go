package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// ProjectPostgres is a PostgreSQL implementation of repository.ProjectRepository.
// project_info and save_plot_details are jsonb columns the server never interprets.
type ProjectPostgres struct {
	db *sql.DB
}

// NewProjectPostgres creates a new ProjectPostgres repository.
func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

const projectColumns = `id, user_id, title, status, project_info, save_plot_details, created_at, updated_at`

func scanProject(row scanner) (*model.Project, error) {
	var (
		p          model.Project
		status     string
		info, plot []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&status,
		&info,
		&plot,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = model.ProjectStatus(status)
	if len(info) > 0 {
		p.ProjectInfo = json.RawMessage(info)
	}
	if len(plot) > 0 {
		p.SavePlotDetails = json.RawMessage(plot)
	}
	return &p, nil
}

// Create inserts a new project row and returns the stored record.
func (r *ProjectPostgres) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	q := `
		INSERT INTO projects (id, user_id, title, status, project_info, save_plot_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + projectColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.UserID,
		p.Title,
		string(p.Status),
		jsonOrNil(p.ProjectInfo),
		jsonOrNil(p.SavePlotDetails),
		p.CreatedAt,
	)
	return scanProject(row)
}

// FindByID fetches a single project by its ID.
func (r *ProjectPostgres) FindByID(ctx context.Context, id string) (*model.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.db.QueryRowContext(ctx, q, id))
}

// ListByUser returns the user's projects using LIMIT/OFFSET pagination and a total count.
func (r *ProjectPostgres) ListByUser(ctx context.Context, userID string, status model.ProjectStatus, pq repository.PageQuery) (*repository.PageResult[model.Project], error) {
	// Count total rows
	const qCount = `
		SELECT COUNT(*) FROM projects
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID, string(status)).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	qList := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, string(status), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Project]{
		Items: items,
		Total: total,
	}, nil
}

// CountByStatus returns the number of projects per status. Statuses with no
// projects are absent from the map.
func (r *ProjectPostgres) CountByStatus(ctx context.Context, userID string) (map[model.ProjectStatus]int, error) {
	const q = `
		SELECT status, COUNT(*)
		FROM projects
		WHERE user_id = $1
		GROUP BY status
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.ProjectStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.ProjectStatus(status)] = n
	}
	return out, rows.Err()
}

// Patch shallow-merges each present document into the stored one with the
// jsonb concatenation operator. A NULL argument leaves the column as is.
func (r *ProjectPostgres) Patch(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	q := `
		UPDATE projects
		SET project_info = CASE WHEN $2::jsonb IS NULL THEN project_info
				ELSE COALESCE(project_info, '{}'::jsonb) || $2::jsonb END,
			save_plot_details = CASE WHEN $3::jsonb IS NULL THEN save_plot_details
				ELSE COALESCE(save_plot_details, '{}'::jsonb) || $3::jsonb END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + projectColumns
	row := r.db.QueryRowContext(ctx, q, id, jsonOrNil(patch.ProjectInfo), jsonOrNil(patch.SavePlotDetails))
	return scanProject(row)
}
