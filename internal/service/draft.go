package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"planportal/internal/model"
	"planportal/internal/repository"
	"planportal/internal/validation"
)

// secretFields are never written to drafts.
var secretFields = []string{"password", "confirm_password"}

// DraftService keeps recovery snapshots of unsubmitted forms.
type DraftService interface {
	Get(ctx context.Context, userID string, form validation.FormKey) (*model.Draft, error)
	Save(ctx context.Context, userID string, form validation.FormKey, values validation.Values) (*model.Draft, error)
	Delete(ctx context.Context, userID string, form validation.FormKey) error
}

type draftService struct {
	repo repository.DraftRepository
	now  func() time.Time
}

// NewDraftService constructs a new DraftService.
func NewDraftService(repo repository.DraftRepository) DraftService {
	return &draftService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *draftService) Get(ctx context.Context, userID string, form validation.FormKey) (*model.Draft, error) {
	if _, err := validation.FormFor(form); err != nil {
		return nil, err
	}
	d, err := s.repo.Get(ctx, userID, string(form))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *draftService) Save(ctx context.Context, userID string, form validation.FormKey, values validation.Values) (*model.Draft, error) {
	if _, err := validation.FormFor(form); err != nil {
		return nil, err
	}
	clean := values.Clone()
	for _, f := range secretFields {
		delete(clean, f)
	}
	d := &model.Draft{
		UserID:    userID,
		FormKey:   string(form),
		Values:    clean,
		UpdatedAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *draftService) Delete(ctx context.Context, userID string, form validation.FormKey) error {
	if _, err := validation.FormFor(form); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, string(form))
}
