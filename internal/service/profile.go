package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"planportal/internal/model"
	"planportal/internal/repository"
	"planportal/internal/validation"
)

// DocumentStatus is the result of checking one stored document URL.
type DocumentStatus struct {
	Purpose model.DocumentPurpose `json:"purpose"`
	URL     string                `json:"url"`
	Exists  bool                  `json:"exists"`
	Error   string                `json:"error,omitempty"`
}

// ProfileService manages the signed-in user's profile and documents.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.User, error)
	// Update validates values with the profile form. A changed email or
	// mobile number needs a proof that names no account or this one.
	Update(ctx context.Context, userID string, values validation.Values, proofs ContactProofs) (*model.User, error)
	ReplaceDocument(ctx context.Context, userID string, purpose model.DocumentPurpose, in FileInput) (*model.StoredFile, error)
	// CheckDocuments HEAD-checks every document URL in the user's metadata.
	CheckDocuments(ctx context.Context, userID string) ([]DocumentStatus, error)
}

type profileService struct {
	users   repository.UserRepository
	auth    AuthService
	uploads UploadService
	now     func() time.Time
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(users repository.UserRepository, auth AuthService, uploads UploadService) ProfileService {
	return &profileService{
		users:   users,
		auth:    auth,
		uploads: uploads,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.auth.GetUser(ctx, userID)
}

func (s *profileService) Update(ctx context.Context, userID string, values validation.Values, proofs ContactProofs) (*model.User, error) {
	form, err := validation.FormFor(validation.ProfileForm)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(values).Err(); err != nil {
		return nil, err
	}
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	email, err := NormalizeContact(model.ChannelEmail, values.Get("email"))
	if err != nil {
		return nil, err
	}
	phone, err := NormalizeContact(model.ChannelSMS, values.Get("phone"))
	if err != nil {
		return nil, err
	}

	changed := map[model.OTPChannel]string{}
	if email != u.Email {
		changed[model.ChannelEmail] = email
	}
	if phone != u.Phone {
		changed[model.ChannelSMS] = phone
	}
	proofFor := map[model.OTPChannel]string{model.ChannelEmail: proofs.Email, model.ChannelSMS: proofs.Phone}
	for _, ch := range []model.OTPChannel{model.ChannelEmail, model.ChannelSMS} {
		contact, ok := changed[ch]
		if !ok {
			continue
		}
		id, err := s.auth.Verified(ctx, ch, contact, proofFor[ch])
		if err != nil {
			return nil, err
		}
		if id.UserID != "" && id.UserID != u.ID {
			return nil, ErrContactMismatch
		}
	}

	now := s.now()
	for ch, contact := range changed {
		if err := s.users.MarkVerified(ctx, u.ID, ch, contact, now); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
	}

	// The profile form owns these fields, so blank values clear them.
	u.Email, u.Phone = email, phone
	md := &u.Metadata
	md.FullName = values.Get("full_name")
	md.Email, md.Phone = email, phone
	md.Address = values.Get("address")
	md.City = values.Get("city")
	md.PinCode = values.Get("pin_code")
	md.EmailVerified, md.PhoneVerified = true, true
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *profileService) ReplaceDocument(ctx context.Context, userID string, purpose model.DocumentPurpose, in FileInput) (*model.StoredFile, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPurpose, purpose)
	}
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := u.Metadata.Documents[purpose].Path

	return s.uploads.Replace(ctx, userID, purpose, in.Filename, in.ContentType, in.Reader, previous,
		func(ctx context.Context, f *model.StoredFile) error {
			u.Metadata = u.Metadata.Merge(model.Metadata{
				Documents: map[model.DocumentPurpose]model.Document{purpose: f.Document()},
			})
			return s.users.Update(ctx, u)
		})
}

func (s *profileService) CheckDocuments(ctx context.Context, userID string) ([]DocumentStatus, error) {
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	purposes := make([]model.DocumentPurpose, 0, len(u.Metadata.Documents))
	for p := range u.Metadata.Documents {
		purposes = append(purposes, p)
	}
	sort.Slice(purposes, func(i, j int) bool { return purposes[i] < purposes[j] })

	out := make([]DocumentStatus, 0, len(purposes))
	for _, p := range purposes {
		doc := u.Metadata.Documents[p]
		st := DocumentStatus{Purpose: p, URL: doc.URL}
		ok, err := s.uploads.Verify(ctx, doc.URL)
		if err != nil {
			st.Error = err.Error()
		}
		st.Exists = ok
		out = append(out, st)
	}
	return out, nil
}
