package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"planportal/internal/model"
	"planportal/internal/repository"
	"planportal/internal/validation"
)

// FileInput is one document attached to a submission.
type FileInput struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ContactProofs are the verification tokens /auth/verify returned for the
// submitted email address and mobile number.
type ContactProofs struct {
	Email string
	Phone string
}

// RegistrationInput is a registration form submission.
type RegistrationInput struct {
	Form        validation.FormKey
	Values      validation.Values
	Declaration validation.Declaration
	Proofs      ContactProofs
	Files       map[model.DocumentPurpose]FileInput
}

// RegistrationResult is the registered account.
type RegistrationResult struct {
	User      *model.User                              `json:"user"`
	Documents map[model.DocumentPurpose]model.Document `json:"documents"`
}

// RegistrationService runs the registration pipeline. Every gate runs before
// the first write, so a blocked submission changes nothing.
type RegistrationService interface {
	Submit(ctx context.Context, in RegistrationInput) (*RegistrationResult, error)
}

type registrationService struct {
	users   repository.UserRepository
	drafts  repository.DraftRepository
	auth    AuthService
	uploads UploadService
	logger  *slog.Logger
	now     func() time.Time
}

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(users repository.UserRepository, drafts repository.DraftRepository, auth AuthService, uploads UploadService, logger *slog.Logger) RegistrationService {
	return &registrationService{
		users:   users,
		drafts:  drafts,
		auth:    auth,
		uploads: uploads,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *registrationService) Submit(ctx context.Context, in RegistrationInput) (*RegistrationResult, error) {
	form, err := validation.FormFor(in.Form)
	if err != nil || form.Role == "" {
		return nil, fmt.Errorf("%w: %s", validation.ErrUnknownForm, in.Form)
	}

	// Gates. Reads only from here until the user is written.
	if err := in.Declaration.Err(); err != nil {
		return nil, err
	}
	if err := form.Validate(in.Values).Err(); err != nil {
		return nil, err
	}
	variant, err := form.Variant(in.Values)
	if err != nil {
		return nil, err
	}
	if missing := missingDocuments(variant, in.Files); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingDocuments, strings.Join(missing, ", "))
	}

	email, err := NormalizeContact(model.ChannelEmail, in.Values.Get("email"))
	if err != nil {
		return nil, err
	}
	phone, err := NormalizeContact(model.ChannelSMS, in.Values.Get("phone"))
	if err != nil {
		return nil, err
	}
	emailProof, err := s.auth.Verified(ctx, model.ChannelEmail, email, in.Proofs.Email)
	if err != nil {
		return nil, err
	}
	phoneProof, err := s.auth.Verified(ctx, model.ChannelSMS, phone, in.Proofs.Phone)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil && existing.Role != "" {
		return nil, ErrAlreadyRegistered
	}
	// A contact bound to an account only counts when it was verified as
	// that account.
	var accountID string
	var prior model.Metadata
	if existing != nil {
		accountID, prior = existing.ID, existing.Metadata
	}
	if emailProof.UserID != accountID {
		return nil, ErrContactMismatch
	}
	if phoneProof.UserID != "" && phoneProof.UserID != accountID {
		return nil, ErrContactMismatch
	}
	loginID := strings.ToLower(in.Values.Get("login_id"))
	holder, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if holder != nil && (existing == nil || holder.ID != existing.ID) {
		return nil, ErrLoginIDTaken
	}

	md := prior.Merge(metadataFromForm(form, in.Values, email, phone))
	withRole := md
	withRole.Role = form.Role
	if err := withRole.Check(); err != nil {
		return nil, err
	}

	// Writes.
	now := s.now()

	u := existing
	if u == nil {
		u, err = s.users.Create(ctx, &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	if err := s.auth.UpdatePassword(ctx, u.ID, in.Values.Get("password")); err != nil {
		return nil, err
	}
	for ch, contact := range map[model.OTPChannel]string{model.ChannelEmail: email, model.ChannelSMS: phone} {
		if err := s.users.MarkVerified(ctx, u.ID, ch, contact, now); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
	}
	u.Email, u.Phone, u.LoginID = email, phone, loginID
	u.Metadata = md
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	docs, err := s.uploadAll(ctx, u.ID, variant, in.Files)
	if err != nil {
		// The account stays; an operator removes it if the user never retries.
		s.logger.WarnContext(ctx, "registration_upload_failed",
			"user_id", u.ID,
			"form", in.Form,
			"orphan_user", true,
			"error", err.Error(),
		)
		return nil, err
	}

	u.Role = form.Role
	u.Metadata = u.Metadata.Merge(model.Metadata{Role: form.Role, Documents: docs})
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}

	if err := s.drafts.Delete(ctx, u.ID, string(in.Form)); err != nil {
		s.logger.WarnContext(ctx, "draft_clear_failed", "user_id", u.ID, "form", in.Form, "error", err.Error())
	}

	return &RegistrationResult{User: u, Documents: docs}, nil
}

// uploadAll uploads the variant's documents first, then any other attached
// purposes in name order. On failure it rolls back the objects this
// submission created; deduplicated objects predate it and are kept.
func (s *registrationService) uploadAll(ctx context.Context, userID string, v model.Variant, files map[model.DocumentPurpose]FileInput) (map[model.DocumentPurpose]model.Document, error) {
	order := append([]model.DocumentPurpose{}, v.Documents...)
	var extra []model.DocumentPurpose
	for p := range files {
		if !containsPurpose(order, p) {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	order = append(order, extra...)

	docs := make(map[model.DocumentPurpose]model.Document, len(order))
	var created []string
	for _, p := range order {
		f := files[p]
		stored, err := s.uploads.Upload(ctx, userID, p, f.Filename, f.ContentType, f.Reader)
		if err != nil {
			if rbErr := s.uploads.Rollback(ctx, created); rbErr != nil {
				err = fmt.Errorf("%w; rollback: %v", err, rbErr)
			}
			return nil, fmt.Errorf("upload %s: %w", p, err)
		}
		if stored.Created {
			created = append(created, stored.Path)
		}
		docs[p] = stored.Document()
	}
	return docs, nil
}

func missingDocuments(v model.Variant, files map[model.DocumentPurpose]FileInput) []string {
	var missing []string
	for _, p := range v.Documents {
		if f, ok := files[p]; !ok || f.Reader == nil {
			missing = append(missing, string(p))
		}
	}
	return missing
}

func containsPurpose(list []model.DocumentPurpose, p model.DocumentPurpose) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

// metadataFromForm maps submitted values onto the metadata record. Only the
// variant's own fields are copied into Fields.
func metadataFromForm(form validation.Form, values validation.Values, email, phone string) model.Metadata {
	md := model.Metadata{
		LoginID:       strings.ToLower(values.Get("login_id")),
		FullName:      values.Get("full_name"),
		Email:         email,
		Phone:         phone,
		Address:       values.Get("address"),
		City:          values.Get("city"),
		PinCode:       values.Get("pin_code"),
		EmailVerified: true,
		PhoneVerified: true,
	}
	kind := values.Get(form.TypeField)
	if form.Role == model.RoleConsultant {
		md.ConsultantType = model.ConsultantType(kind)
	} else {
		md.EntityType = model.EntityType(kind)
	}
	if v, err := form.Variant(values); err == nil {
		md.Fields = make(map[string]string, len(v.Fields))
		for _, f := range v.Fields {
			md.Fields[f] = values.Get(f)
		}
	}
	return md
}
