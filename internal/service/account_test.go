package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"planportal/internal/model"
	repoMocks "planportal/internal/repository/mocks"
	"planportal/internal/service"
	svcMocks "planportal/internal/service/mocks"
	"planportal/internal/validation"
)

func TestAccountService_SetUserRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		role       model.Role
		md         model.Metadata
		setupMocks func(users *repoMocks.MockUserRepository, auth *svcMocks.MockAuthService)
		wantErr    error
	}{
		{
			name: "merges metadata",
			role: model.RoleConsultant,
			md: model.Metadata{
				ConsultantType: model.ConsultantArchitect,
				Fields:         map[string]string{"council_registration_number": "CA/2019/12345"},
			},
			setupMocks: func(users *repoMocks.MockUserRepository, auth *svcMocks.MockAuthService) {
				auth.On("GetUser", ctx, "u1").Return(&model.User{ID: "u1", Metadata: model.Metadata{FullName: "Asha Rao"}}, nil)
				users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Role == model.RoleConsultant &&
						u.Metadata.FullName == "Asha Rao" &&
						u.Metadata.Fields["council_registration_number"] == "CA/2019/12345"
				})).Return(nil)
			},
		},
		{
			name: "switching entity type replaces the variant fields",
			role: model.RoleOwner,
			md: model.Metadata{
				EntityType: model.EntityPrivateLimited,
				Fields: map[string]string{
					"company_name":      "Rao Builders Pvt Ltd",
					"cin":               "U45200KA2020PTC123456",
					"pan":               "ABCDE1234F",
					"authorized_person": "Asha Rao",
				},
			},
			setupMocks: func(users *repoMocks.MockUserRepository, auth *svcMocks.MockAuthService) {
				auth.On("GetUser", ctx, "u1").Return(&model.User{ID: "u1", Role: model.RoleOwner, Metadata: model.Metadata{
					Role:       model.RoleOwner,
					EntityType: model.EntityLLP,
					Fields: map[string]string{
						"firm_name":         "Rao Builders LLP",
						"llpin":             "AAB-1234",
						"pan":               "ABCDE1234F",
						"authorized_person": "Asha Rao",
					},
				}}, nil)
				users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
					_, firm := u.Metadata.Fields["firm_name"]
					_, llpin := u.Metadata.Fields["llpin"]
					return u.Metadata.EntityType == model.EntityPrivateLimited && !firm && !llpin &&
						u.Metadata.Fields["cin"] == "U45200KA2020PTC123456"
				})).Return(nil)
			},
		},
		{
			name:       "unknown role",
			role:       "auditor",
			setupMocks: func(users *repoMocks.MockUserRepository, auth *svcMocks.MockAuthService) {},
			wantErr:    service.ErrInvalidRole,
		},
		{
			name: "field outside the variant",
			role: model.RoleOwner,
			md: model.Metadata{
				EntityType: model.EntityIndividual,
				Fields:     map[string]string{"cin": "L12345MH2001PLC123456"},
			},
			setupMocks: func(users *repoMocks.MockUserRepository, auth *svcMocks.MockAuthService) {
				auth.On("GetUser", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
			},
			wantErr: model.ErrUndeclaredKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			auth := new(svcMocks.MockAuthService)
			tt.setupMocks(users, auth)
			svc := service.NewAccountService(users, auth)

			u, err := svc.SetUserRole(ctx, "u1", tt.role, tt.md)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, u.Metadata.Role)
			users.AssertExpectations(t)
		})
	}
}

func TestAccountService_LoginIDTaken(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	svc := service.NewAccountService(users, nil)

	users.On("FindByLoginID", ctx, "asha.rao").Return(&model.User{ID: "u1"}, nil)
	users.On("FindByLoginID", ctx, "free.id").Return(nil, sql.ErrNoRows)

	taken, err := svc.LoginIDTaken(ctx, " Asha.Rao ")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = svc.LoginIDTaken(ctx, "free.id")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = svc.LoginIDTaken(ctx, "a b")
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestAccountService_UpdateUserPassword(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	auth := new(svcMocks.MockAuthService)
	svc := service.NewAccountService(users, auth)

	auth.On("UpdatePassword", ctx, "u1", "weak").Return(service.ErrWeakPassword).Once()
	_, err := svc.UpdateUserPassword(ctx, "u1", "weak", model.Metadata{})
	assert.ErrorIs(t, err, service.ErrWeakPassword)

	auth.On("UpdatePassword", ctx, "u1", "Secur3!pass").Return(nil)
	auth.On("GetUser", ctx, "u1").Return(&model.User{ID: "u1"}, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Metadata.City == "Pune"
	})).Return(nil)

	u, err := svc.UpdateUserPassword(ctx, "u1", "Secur3!pass", model.Metadata{City: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, "Pune", u.Metadata.City)
}
