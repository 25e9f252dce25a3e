package postgres

import (
	"context"
	"database/sql"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// FilePostgres indexes uploaded objects in user_files.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// Create records an uploaded object. The storage path is unique, so a repeated
// upload of identical content leaves the existing row alone.
func (r *FilePostgres) Create(ctx context.Context, userID string, f model.StoredFile) error {
	const q = `
		INSERT INTO user_files (storage_path, user_id, purpose, sha256, size, content_type, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (storage_path) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q,
		f.Path,
		userID,
		string(f.Purpose),
		f.Hash,
		f.Size,
		f.ContentType,
		f.URL,
	)
	return err
}

// ListByUser returns the user's files using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.StoredFile], error) {
	// Count total rows
	const qCount = `SELECT COUNT(*) FROM user_files WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = `
		SELECT storage_path, purpose, sha256, size, content_type, url
		FROM user_files
		WHERE user_id = $1
		ORDER BY created_at DESC, storage_path DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StoredFile, 0)
	for rows.Next() {
		var (
			f       model.StoredFile
			purpose string
		)
		if err := rows.Scan(
			&f.Path,
			&purpose,
			&f.Hash,
			&f.Size,
			&f.ContentType,
			&f.URL,
		); err != nil {
			return nil, err
		}
		f.Purpose = model.DocumentPurpose(purpose)
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.StoredFile]{
		Items: items,
		Total: total,
	}, nil
}

// DeleteByPath removes a record by storage path. It does not return an error if the row does not exist.
func (r *FilePostgres) DeleteByPath(ctx context.Context, path string) error {
	const q = `DELETE FROM user_files WHERE storage_path = $1`
	_, err := r.db.ExecContext(ctx, q, path)
	return err
}
