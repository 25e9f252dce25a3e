package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// DraftPostgres keeps form drafts keyed by (user_id, form_key).
type DraftPostgres struct {
	db *sql.DB
}

func NewDraftPostgres(db *sql.DB) *DraftPostgres {
	return &DraftPostgres{db: db}
}

var _ repository.DraftRepository = (*DraftPostgres)(nil)

func (r *DraftPostgres) Get(ctx context.Context, userID, formKey string) (*model.Draft, error) {
	const q = `
		SELECT user_id, form_key, values, updated_at
		FROM drafts
		WHERE user_id = $1 AND form_key = $2
	`
	var (
		d   model.Draft
		raw []byte
	)
	if err := r.db.QueryRowContext(ctx, q, userID, formKey).Scan(&d.UserID, &d.FormKey, &raw, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &d.Values); err != nil {
		return nil, fmt.Errorf("decode draft values: %w", err)
	}
	return &d, nil
}

// Upsert replaces the whole draft; the latest save wins.
func (r *DraftPostgres) Upsert(ctx context.Context, d *model.Draft) error {
	raw, err := json.Marshal(d.Values)
	if err != nil {
		return fmt.Errorf("encode draft values: %w", err)
	}
	const q = `
		INSERT INTO drafts (user_id, form_key, values, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, form_key)
		DO UPDATE SET values = EXCLUDED.values, updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, q, d.UserID, d.FormKey, raw, d.UpdatedAt)
	return err
}

func (r *DraftPostgres) Delete(ctx context.Context, userID, formKey string) error {
	const q = `DELETE FROM drafts WHERE user_id = $1 AND form_key = $2`
	_, err := r.db.ExecContext(ctx, q, userID, formKey)
	return err
}
