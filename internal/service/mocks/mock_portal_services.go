package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"planportal/internal/letterhead"
	"planportal/internal/model"
	"planportal/internal/service"
	"planportal/internal/validation"
)

var (
	_ service.AccountService      = (*MockAccountService)(nil)
	_ service.ProfileService      = (*MockProfileService)(nil)
	_ service.DraftService        = (*MockDraftService)(nil)
	_ service.ProjectService      = (*MockProjectService)(nil)
	_ service.RegistrationService = (*MockRegistrationService)(nil)
	_ service.LetterheadService   = (*MockLetterheadService)(nil)
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) SetUserRole(ctx context.Context, userID string, role model.Role, md model.Metadata) (*model.User, error) {
	args := m.Called(ctx, userID, role, md)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) LoginIDTaken(ctx context.Context, loginID string) (bool, error) {
	args := m.Called(ctx, loginID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) UpdateUserPassword(ctx context.Context, userID, password string, md model.Metadata) (*model.User, error) {
	args := m.Called(ctx, userID, password, md)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID string, values validation.Values, proofs service.ContactProofs) (*model.User, error) {
	args := m.Called(ctx, userID, values, proofs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) ReplaceDocument(ctx context.Context, userID string, purpose model.DocumentPurpose, in service.FileInput) (*model.StoredFile, error) {
	args := m.Called(ctx, userID, purpose, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockProfileService) CheckDocuments(ctx context.Context, userID string) ([]service.DocumentStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentStatus), args.Error(1)
}

type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) Get(ctx context.Context, userID string, form validation.FormKey) (*model.Draft, error) {
	args := m.Called(ctx, userID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftService) Save(ctx context.Context, userID string, form validation.FormKey, values validation.Values) (*model.Draft, error) {
	args := m.Called(ctx, userID, form, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDraftService) Delete(ctx context.Context, userID string, form validation.FormKey) error {
	return m.Called(ctx, userID, form).Error(0)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, userID, title string, projectInfo json.RawMessage) (*model.Project, error) {
	args := m.Called(ctx, userID, title, projectInfo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, userID, id string) (*model.Project, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, userID string, status model.ProjectStatus, limit, offset int) (*service.ProjectListResult, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProjectListResult), args.Error(1)
}

func (m *MockProjectService) Dashboard(ctx context.Context, userID string) (*service.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

func (m *MockProjectService) Patch(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Submit(ctx context.Context, in service.RegistrationInput) (*service.RegistrationResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegistrationResult), args.Error(1)
}

type MockLetterheadService struct {
	mock.Mock
}

func (m *MockLetterheadService) Generate(ctx context.Context, userID string, c letterhead.Content, bg *letterhead.Background) (*service.LetterheadOutput, error) {
	args := m.Called(ctx, userID, c, bg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LetterheadOutput), args.Error(1)
}
