package postgres

import (
	"context"
	"database/sql"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// RefreshTokenPostgres stores sha256 hashes of refresh tokens, never the tokens.
type RefreshTokenPostgres struct {
	db *sql.DB
}

func NewRefreshTokenPostgres(db *sql.DB) *RefreshTokenPostgres {
	return &RefreshTokenPostgres{db: db}
}

var _ repository.RefreshTokenRepository = (*RefreshTokenPostgres)(nil)

func (r *RefreshTokenPostgres) Create(ctx context.Context, t *model.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
	`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	return err
}

func (r *RefreshTokenPostgres) FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	const q = `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	var t model.RefreshToken
	if err := r.db.QueryRowContext(ctx, q, hash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.Revoked,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke marks the token unusable. Revoking twice is not an error.
func (r *RefreshTokenPostgres) Revoke(ctx context.Context, id string) error {
	const q = `UPDATE refresh_tokens SET revoked = true WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
