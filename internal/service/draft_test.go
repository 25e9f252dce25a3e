package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"planportal/internal/model"
	repoMocks "planportal/internal/repository/mocks"
	"planportal/internal/validation"
)

func TestDraftService_Save(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockDraftRepository)
	svc := NewDraftService(repo).(*draftService)
	svc.now = func() time.Time { return testNow }

	values := validation.Values{"full_name": "Asha Rao", "password": "Secur3!pass", "confirm_password": "Secur3!pass"}
	repo.On("Upsert", ctx, mock.MatchedBy(func(d *model.Draft) bool {
		_, hasPw := d.Values["password"]
		_, hasConfirm := d.Values["confirm_password"]
		return d.FormKey == "owner_registration" && !hasPw && !hasConfirm && d.UpdatedAt.Equal(testNow)
	})).Return(nil)

	d, err := svc.Save(ctx, "u1", validation.OwnerRegistration, values)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", d.Values["full_name"])
	assert.Equal(t, "Secur3!pass", values["password"], "caller values are not modified")
	repo.AssertExpectations(t)

	_, err = svc.Save(ctx, "u1", "tax_form", values)
	assert.ErrorIs(t, err, validation.ErrUnknownForm)
}

func TestDraftService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(repo *repoMocks.MockDraftRepository)
		wantErr    error
	}{
		{
			name: "found",
			setupMocks: func(repo *repoMocks.MockDraftRepository) {
				repo.On("Get", ctx, "u1", "profile").Return(&model.Draft{FormKey: "profile"}, nil)
			},
		},
		{
			name: "not found",
			setupMocks: func(repo *repoMocks.MockDraftRepository) {
				repo.On("Get", ctx, "u1", "profile").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrDraftNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockDraftRepository)
			tt.setupMocks(repo)
			svc := NewDraftService(repo)

			d, err := svc.Get(ctx, "u1", validation.ProfileForm)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "profile", d.FormKey)
		})
	}
}

func TestDraftService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockDraftRepository)
	repo.On("Delete", ctx, "u1", "consultant_registration").Return(nil)

	require.NoError(t, NewDraftService(repo).Delete(ctx, "u1", validation.ConsultantRegistration))
	repo.AssertExpectations(t)
}
