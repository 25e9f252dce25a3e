package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"planportal/internal/letterhead"
	"planportal/internal/model"
	"planportal/internal/repository"
)

// LetterheadRenderer draws a letterhead PDF.
type LetterheadRenderer interface {
	Render(c letterhead.Content, bg *letterhead.Background) (*letterhead.Result, error)
}

// LetterheadOutput is a generated letterhead and where it was stored.
type LetterheadOutput struct {
	PDF     []byte
	File    *model.StoredFile
	Dropped int
}

// LetterheadService renders letterheads from the user's profile and keeps the
// latest one under the letterhead document purpose.
type LetterheadService interface {
	Generate(ctx context.Context, userID string, c letterhead.Content, bg *letterhead.Background) (*LetterheadOutput, error)
}

type letterheadService struct {
	users    repository.UserRepository
	auth     AuthService
	uploads  UploadService
	renderer LetterheadRenderer
	logger   *slog.Logger
	now      func() time.Time
}

// NewLetterheadService constructs a new LetterheadService.
func NewLetterheadService(users repository.UserRepository, auth AuthService, uploads UploadService, renderer LetterheadRenderer, logger *slog.Logger) LetterheadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &letterheadService{
		users:    users,
		auth:     auth,
		uploads:  uploads,
		renderer: renderer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// fillFromProfile copies profile values into the fields the caller left blank.
func fillFromProfile(c letterhead.Content, u *model.User, now time.Time) letterhead.Content {
	md := u.Metadata
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	set(&c.Name, md.FullName)
	set(&c.Email, u.Email)
	set(&c.Phone, u.Phone)
	set(&c.Address, joinNonEmpty(", ", md.Address, md.City, md.PinCode))
	for _, k := range []string{"council_registration_number", "license_number", "itpi_membership_number", "rera_registration_number"} {
		if v := md.Fields[k]; v != "" {
			set(&c.Registration, "Reg. No. "+v)
			break
		}
	}
	set(&c.Date, now.Format("02/01/2006"))
	return c
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

func (s *letterheadService) Generate(ctx context.Context, userID string, c letterhead.Content, bg *letterhead.Background) (*LetterheadOutput, error) {
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := s.renderer.Render(fillFromProfile(c, u, s.now()), bg)
	if err != nil {
		return nil, fmt.Errorf("render letterhead: %w", err)
	}
	if res.Dropped > 0 {
		s.logger.Warn("letterhead_overflow", "user_id", userID, "dropped_lines", res.Dropped)
	}

	previous := u.Metadata.Documents[model.DocLetterhead].Path
	f, err := s.uploads.Replace(ctx, userID, model.DocLetterhead, "letterhead.pdf", "application/pdf",
		bytes.NewReader(res.PDF), previous,
		func(ctx context.Context, f *model.StoredFile) error {
			u.Metadata = u.Metadata.Merge(model.Metadata{
				Documents: map[model.DocumentPurpose]model.Document{model.DocLetterhead: f.Document()},
			})
			return s.users.Update(ctx, u)
		})
	if err != nil {
		return nil, err
	}
	return &LetterheadOutput{PDF: res.PDF, File: f, Dropped: res.Dropped}, nil
}
