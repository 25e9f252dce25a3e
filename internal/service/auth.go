package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"planportal/internal/auth"
	"planportal/internal/config"
	"planportal/internal/metrics"
	"planportal/internal/model"
	"planportal/internal/notify"
	"planportal/internal/repository"
	"planportal/internal/validation"
)

// OTPSent describes an issued code without revealing it.
type OTPSent struct {
	Channel     model.OTPChannel `json:"channel"`
	Contact     string           `json:"contact"`
	CodeLength  int              `json:"code_length"`
	ExpiresAt   time.Time        `json:"expires_at"`
	ResendAfter time.Time        `json:"resend_after"`
}

// AuthService is the portal's authentication provider.
type AuthService interface {
	// SignInWithPassword accepts an email, mobile number or login id.
	SignInWithPassword(ctx context.Context, login, password string) (*model.Session, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	// Refresh rotates the pair: the presented refresh token is revoked.
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	// SignOut revokes the refresh token. Unknown tokens are ignored.
	SignOut(ctx context.Context, refreshToken string) error
	UpdatePassword(ctx context.Context, userID, password string) error

	// SendOTP issues a code. createUser lets a successful email verification
	// create the account for an unknown address.
	SendOTP(ctx context.Context, channel model.OTPChannel, contact string, createUser bool) (*OTPSent, error)
	// VerifyOTP consumes a code. The result always names the verified
	// contact and carries a verification token for it; it carries a session
	// only when an account is bound to the contact.
	VerifyOTP(ctx context.Context, channel model.OTPChannel, contact, code string) (*model.Verification, error)
	// Verified checks a verification token against the contact it must
	// prove and returns the identity it names.
	Verified(ctx context.Context, channel model.OTPChannel, contact, token string) (model.Identity, error)
}

type authService struct {
	users   repository.UserRepository
	tokens  repository.RefreshTokenRepository
	otps    repository.OTPRepository
	sender  notify.Sender
	issuer  *auth.Issuer
	cfg     config.OTPConfig
	refresh time.Duration
	metrics *metrics.Domain
	now     func() time.Time
}

// NewAuthService constructs the auth provider.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	otps repository.OTPRepository,
	sender notify.Sender,
	issuer *auth.Issuer,
	authCfg config.AuthConfig,
	otpCfg config.OTPConfig,
	m *metrics.Domain,
) AuthService {
	return &authService{
		users:   users,
		tokens:  tokens,
		otps:    otps,
		sender:  sender,
		issuer:  issuer,
		cfg:     otpCfg,
		refresh: authCfg.RefreshExpiry,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeContact canonicalizes and validates a contact for its channel.
func NormalizeContact(channel model.OTPChannel, contact string) (string, error) {
	switch channel {
	case model.ChannelEmail:
		c := strings.ToLower(strings.TrimSpace(contact))
		if c == "" || validation.ValidateField("email", c, nil) != "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidContact, contact)
		}
		return c, nil
	case model.ChannelSMS:
		c := validation.NormalizePhone(contact)
		if c == "" || validation.ValidateField("phone", c, nil) != "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidContact, contact)
		}
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}
}

func (s *authService) findByLogin(ctx context.Context, login string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return s.users.FindByEmail(ctx, strings.ToLower(login))
	}
	if p := validation.NormalizePhone(login); validation.ValidateField("phone", p, nil) == "" {
		return s.users.FindByPhone(ctx, p)
	}
	return s.users.FindByLoginID(ctx, strings.ToLower(login))
}

func (s *authService) SignInWithPassword(ctx context.Context, login, password string) (*model.Session, error) {
	u, err := s.findByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, u)
}

func (s *authService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	stored, err := s.tokens.FindByHash(ctx, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if stored.Revoked {
		return nil, ErrInvalidToken
	}
	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	u, err := s.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, u)
}

func (s *authService) SignOut(ctx context.Context, refreshToken string) error {
	stored, err := s.tokens.FindByHash(ctx, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	return s.tokens.Revoke(ctx, stored.ID)
}

func (s *authService) UpdatePassword(ctx context.Context, userID, password string) error {
	if userID == "" {
		return ErrIDRequired
	}
	if errs := validation.PasswordErrors(password); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrWeakPassword, errs[0])
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *authService) SendOTP(ctx context.Context, channel model.OTPChannel, contact string, createUser bool) (*OTPSent, error) {
	contact, err := NormalizeContact(channel, contact)
	if err != nil {
		return nil, err
	}
	now := s.now()

	last, err := s.otps.FindLatest(ctx, channel, contact)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if last != nil {
		if wait := last.CreatedAt.Add(s.cfg.ResendInterval).Sub(now); wait > 0 {
			s.metrics.OTPSent(channel, "throttled")
			return nil, fmt.Errorf("%w: retry in %ds", ErrOTPThrottled, int(wait.Seconds()+0.999))
		}
	}

	code, err := auth.GenerateCode(channel.CodeLength())
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	c := &model.OTPChallenge{
		ID:         uuid.New().String(),
		Channel:    channel,
		Contact:    contact,
		CreateUser: createUser && channel == model.ChannelEmail,
		ExpiresAt:  now.Add(s.cfg.TTL),
		CreatedAt:  now,
	}
	c.CodeHash = auth.HashCode(s.issuer.Secret(), c.ID, code)

	if err := s.otps.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	if err := s.sender.Send(ctx, channel, contact, code); err != nil {
		s.metrics.OTPSent(channel, "failed")
		return nil, fmt.Errorf("%w: %v", ErrOTPDelivery, err)
	}
	s.metrics.OTPSent(channel, "sent")

	return &OTPSent{
		Channel:     channel,
		Contact:     contact,
		CodeLength:  channel.CodeLength(),
		ExpiresAt:   c.ExpiresAt,
		ResendAfter: now.Add(s.cfg.ResendInterval),
	}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, channel model.OTPChannel, contact, code string) (*model.Verification, error) {
	contact, err := NormalizeContact(channel, contact)
	if err != nil {
		return nil, err
	}
	if len(code) != channel.CodeLength() {
		s.metrics.OTPVerified(channel, "invalid")
		return nil, ErrOTPInvalid
	}
	now := s.now()

	c, err := s.otps.FindActive(ctx, channel, contact, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.OTPVerified(channel, "expired")
			return nil, ErrOTPInvalid
		}
		return nil, err
	}
	if c.Attempts >= s.cfg.MaxAttempts {
		s.metrics.OTPVerified(channel, "locked")
		return nil, ErrOTPAttempts
	}
	if !auth.CodeMatches(s.issuer.Secret(), c.ID, code, c.CodeHash) {
		if err := s.otps.IncrementAttempts(ctx, c.ID); err != nil {
			return nil, err
		}
		s.metrics.OTPVerified(channel, "invalid")
		return nil, ErrOTPInvalid
	}
	if err := s.otps.Consume(ctx, c.ID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}
	s.metrics.OTPVerified(channel, "verified")

	out := &model.Verification{Identity: model.Identity{Channel: channel, Contact: contact}}

	u, err := s.userByContact(ctx, channel, contact)
	if err != nil {
		return nil, err
	}
	if u == nil && c.CreateUser {
		u, err = s.users.Create(ctx, &model.User{
			ID:        uuid.New().String(),
			Email:     contact,
			Metadata:  model.Metadata{Email: contact},
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	if u != nil {
		if err := s.users.MarkVerified(ctx, u.ID, channel, contact, now); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		if channel == model.ChannelEmail {
			u.EmailVerifiedAt = &now
		} else {
			u.PhoneVerifiedAt = &now
		}
		out.Identity.UserID = u.ID
		if out.Session, err = s.issueSession(ctx, u); err != nil {
			return nil, err
		}
	}

	if out.Identity.Token, err = s.issuer.Verification(out.Identity, now, s.cfg.VerifiedWindow); err != nil {
		return nil, err
	}
	return out, nil
}

// Verified reports a missing, expired or foreign token as the channel's
// not-verified error.
func (s *authService) Verified(_ context.Context, channel model.OTPChannel, contact, token string) (model.Identity, error) {
	notVerified := ErrPhoneNotVerified
	if channel == model.ChannelEmail {
		notVerified = ErrEmailNotVerified
	}
	contact, err := NormalizeContact(channel, contact)
	if err != nil {
		return model.Identity{}, err
	}
	if token == "" {
		return model.Identity{}, notVerified
	}
	id, err := s.issuer.ParseVerification(token)
	if err != nil || id.Channel != channel || id.Contact != contact {
		return model.Identity{}, notVerified
	}
	return id, nil
}

func (s *authService) userByContact(ctx context.Context, channel model.OTPChannel, contact string) (*model.User, error) {
	var (
		u   *model.User
		err error
	)
	if channel == model.ChannelEmail {
		u, err = s.users.FindByEmail(ctx, contact)
	} else {
		u, err = s.users.FindByPhone(ctx, contact)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *authService) issueSession(ctx context.Context, u *model.User) (*model.Session, error) {
	now := s.now()
	access, exp, err := s.issuer.Access(u, now)
	if err != nil {
		return nil, err
	}
	raw, hash, err := auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &model.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.refresh),
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &model.Session{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    "bearer",
		ExpiresIn:    int(s.issuer.Expiry().Seconds()),
		ExpiresAt:    exp,
		User:         u,
	}, nil
}
