package postgres

import (
	"context"
	"database/sql"
	"time"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// OTPPostgres persists issued code challenges in otp_challenges.
type OTPPostgres struct {
	db *sql.DB
}

func NewOTPPostgres(db *sql.DB) *OTPPostgres {
	return &OTPPostgres{db: db}
}

var _ repository.OTPRepository = (*OTPPostgres)(nil)

const otpColumns = `id, channel, contact, code_hash, create_user, attempts, expires_at, consumed_at, created_at`

func scanOTP(row scanner) (*model.OTPChallenge, error) {
	var (
		c        model.OTPChallenge
		channel  string
		consumed sql.NullTime
	)
	if err := row.Scan(
		&c.ID,
		&channel,
		&c.Contact,
		&c.CodeHash,
		&c.CreateUser,
		&c.Attempts,
		&c.ExpiresAt,
		&consumed,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.Channel = model.OTPChannel(channel)
	c.ConsumedAt = timePtr(consumed)
	return &c, nil
}

func (r *OTPPostgres) Create(ctx context.Context, c *model.OTPChallenge) error {
	const q = `
		INSERT INTO otp_challenges (id, channel, contact, code_hash, create_user, attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		string(c.Channel),
		c.Contact,
		c.CodeHash,
		c.CreateUser,
		c.ExpiresAt,
		c.CreatedAt,
	)
	return err
}

func (r *OTPPostgres) FindLatest(ctx context.Context, channel model.OTPChannel, contact string) (*model.OTPChallenge, error) {
	q := `
		SELECT ` + otpColumns + `
		FROM otp_challenges
		WHERE channel = $1 AND contact = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanOTP(r.db.QueryRowContext(ctx, q, string(channel), contact))
}

func (r *OTPPostgres) FindActive(ctx context.Context, channel model.OTPChannel, contact string, now time.Time) (*model.OTPChallenge, error) {
	q := `
		SELECT ` + otpColumns + `
		FROM otp_challenges
		WHERE channel = $1 AND contact = $2 AND consumed_at IS NULL AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanOTP(r.db.QueryRowContext(ctx, q, string(channel), contact, now))
}

func (r *OTPPostgres) IncrementAttempts(ctx context.Context, id string) error {
	const q = `UPDATE otp_challenges SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Consume stamps the challenge once. A second call matches no row and
// returns sql.ErrNoRows, so two concurrent verifications cannot both win.
func (r *OTPPostgres) Consume(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE otp_challenges SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	return expectOne(res)
}
