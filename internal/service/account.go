package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planportal/internal/model"
	"planportal/internal/repository"
	"planportal/internal/validation"
)

// AccountService backs the first-party account endpoints used by the
// registration forms.
type AccountService interface {
	// SetUserRole upserts the role and merges metadata into the stored record.
	SetUserRole(ctx context.Context, userID string, role model.Role, md model.Metadata) (*model.User, error)
	// LoginIDTaken reports whether a login id already belongs to an account.
	LoginIDTaken(ctx context.Context, loginID string) (bool, error)
	// UpdateUserPassword sets the password of a freshly created user and
	// attaches metadata in one call.
	UpdateUserPassword(ctx context.Context, userID, password string, md model.Metadata) (*model.User, error)
}

type accountService struct {
	users repository.UserRepository
	auth  AuthService
}

// NewAccountService constructs a new AccountService.
func NewAccountService(users repository.UserRepository, auth AuthService) AccountService {
	return &accountService{users: users, auth: auth}
}

func validRole(r model.Role) bool {
	switch r {
	case model.RoleOwner, model.RoleConsultant, model.RoleDeveloper:
		return true
	}
	return false
}

func (s *accountService) SetUserRole(ctx context.Context, userID string, role model.Role, md model.Metadata) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if !validRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	md.Role = role
	merged := u.Metadata.Merge(md)
	if err := merged.Check(); err != nil {
		return nil, err
	}
	u.Role = role
	u.Metadata = merged
	if merged.LoginID != "" {
		u.LoginID = merged.LoginID
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *accountService) LoginIDTaken(ctx context.Context, loginID string) (bool, error) {
	loginID = strings.ToLower(strings.TrimSpace(loginID))
	if loginID == "" {
		return false, ErrIDRequired
	}
	if msg := validation.ValidateField("login_id", loginID, nil); msg != "" {
		return false, &validation.Error{Result: validation.Result{Errors: []validation.FieldError{
			{Field: "login_id", Message: msg, Section: validation.SectionAccount},
		}}}
	}
	_, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *accountService) UpdateUserPassword(ctx context.Context, userID, password string, md model.Metadata) (*model.User, error) {
	if err := s.auth.UpdatePassword(ctx, userID, password); err != nil {
		return nil, err
	}
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := u.Metadata.Merge(md)
	if err := merged.Check(); err != nil {
		return nil, err
	}
	u.Metadata = merged
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
