package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"planportal/internal/model"
	"planportal/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, phone, login_id, password_hash, role, metadata,
		email_verified_at, phone_verified_at, created_at, updated_at`

func scanUser(row scanner) (*model.User, error) {
	var (
		u                   model.User
		email, phone, login sql.NullString
		role                string
		meta                []byte
		emailVer, phoneVer  sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&email,
		&phone,
		&login,
		&u.PasswordHash,
		&role,
		&meta,
		&emailVer,
		&phoneVer,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Email, u.Phone, u.LoginID = email.String, phone.String, login.String
	u.Role = model.Role(role)
	u.EmailVerifiedAt, u.PhoneVerifiedAt = timePtr(emailVer), timePtr(phoneVer)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &u.Metadata); err != nil {
			return nil, fmt.Errorf("decode user metadata: %w", err)
		}
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	meta, err := json.Marshal(u.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode user metadata: %w", err)
	}
	q := `
		INSERT INTO users (id, email, phone, login_id, password_hash, role, metadata,
			email_verified_at, phone_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		nullString(u.Email),
		nullString(u.Phone),
		nullString(u.LoginID),
		u.PasswordHash,
		string(u.Role),
		meta,
		nullTime(u.EmailVerifiedAt),
		nullTime(u.PhoneVerifiedAt),
		u.CreatedAt,
	)
	return scanUser(row)
}

func (r *UserPostgres) findBy(ctx context.Context, column, value string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, value))
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findBy(ctx, "id", id)
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *UserPostgres) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findBy(ctx, "phone", phone)
}

func (r *UserPostgres) FindByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	return r.findBy(ctx, "login_id", loginID)
}

// Update writes contact columns, role and metadata.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) error {
	meta, err := json.Marshal(u.Metadata)
	if err != nil {
		return fmt.Errorf("encode user metadata: %w", err)
	}
	const q = `
		UPDATE users
		SET email = $2, phone = $3, login_id = $4, role = $5, metadata = $6, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		u.ID,
		nullString(u.Email),
		nullString(u.Phone),
		nullString(u.LoginID),
		string(u.Role),
		meta,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserPostgres) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// MarkVerified sets the contact column of the channel and its timestamp.
func (r *UserPostgres) MarkVerified(ctx context.Context, id string, channel model.OTPChannel, contact string, at time.Time) error {
	var q string
	switch channel {
	case model.ChannelEmail:
		q = `UPDATE users SET email = $2, email_verified_at = $3, updated_at = now() WHERE id = $1`
	case model.ChannelSMS:
		q = `UPDATE users SET phone = $2, phone_verified_at = $3, updated_at = now() WHERE id = $1`
	default:
		return fmt.Errorf("unsupported channel %q", channel)
	}
	res, err := r.db.ExecContext(ctx, q, id, contact, at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
