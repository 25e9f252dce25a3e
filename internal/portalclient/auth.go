package portalclient

import (
	"context"
	"net/http"
	"time"

	"planportal/internal/model"
	"planportal/internal/session"
	"planportal/internal/verification"
)

var _ verification.Authenticator = (*Client)(nil)

// OTPSent describes an issued code.
type OTPSent struct {
	Channel     model.OTPChannel `json:"channel"`
	Contact     string           `json:"contact"`
	CodeLength  int              `json:"code_length"`
	ExpiresAt   time.Time        `json:"expires_at"`
	ResendAfter time.Time        `json:"resend_after"`
}

// SignIn signs in with an email, mobile number or login id and stores the session.
func (c *Client) SignIn(ctx context.Context, login, password string) (*model.Session, error) {
	var s model.Session
	if err := c.call(ctx, http.MethodPost, "/auth/login", map[string]string{"login": login, "password": password}, &s, false); err != nil {
		return nil, err
	}
	return &s, c.store.Set(ctx, pairOf(&s))
}

// SetSession adopts a held pair: it is validated against the API and
// refreshed when the access token has expired.
func (c *Client) SetSession(ctx context.Context, p session.Pair) (*model.User, error) {
	if err := c.store.Set(ctx, p); err != nil {
		return nil, err
	}
	return c.GetUser(ctx)
}

// GetUser returns the signed-in user.
func (c *Client) GetUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodGet, "/auth/user", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword changes the signed-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	return c.call(ctx, http.MethodPut, "/auth/user", map[string]string{"password": password}, nil, true)
}

// SignOut revokes the refresh token and clears the local session. The local
// session is cleared even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	p, ok := c.store.Current()
	if !ok {
		return nil
	}
	err := c.call(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": p.RefreshToken}, nil, false)
	if serr := c.store.Set(ctx, session.Pair{}); serr != nil {
		return serr
	}
	return err
}

// RequestOTP asks for a code. createUser lets an email code create the account.
func (c *Client) RequestOTP(ctx context.Context, channel model.OTPChannel, contact string, createUser bool) (*OTPSent, error) {
	var out OTPSent
	in := map[string]any{"channel": channel, "contact": contact, "create_user": createUser}
	if err := c.call(ctx, http.MethodPost, "/auth/otp", in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendOTP satisfies verification.Authenticator. Email codes may create the account.
func (c *Client) SendOTP(ctx context.Context, channel model.OTPChannel, contact string) error {
	_, err := c.RequestOTP(ctx, channel, contact, channel == model.ChannelEmail)
	return err
}

// VerifyOTP verifies a code. Like a hosted auth provider, a response that
// carries a session replaces the stored one; callers that must keep their
// own session wrap the call in session.Preserve or a verification.Flow.
func (c *Client) VerifyOTP(ctx context.Context, channel model.OTPChannel, contact, code string) (model.Identity, error) {
	var out model.Verification
	in := map[string]string{"channel": string(channel), "contact": contact, "code": code}
	if err := c.call(ctx, http.MethodPost, "/auth/verify", in, &out, false); err != nil {
		return model.Identity{}, err
	}
	if out.Session != nil {
		if err := c.store.Set(ctx, pairOf(out.Session)); err != nil {
			return model.Identity{}, err
		}
	}
	return out.Identity, nil
}

// NewVerification builds a verification flow bound to this client's session.
func (c *Client) NewVerification(channel model.OTPChannel, contact string, onVerified func(context.Context, model.Identity) error) (*verification.Flow, error) {
	return verification.New(verification.Config{
		Channel:    channel,
		Contact:    contact,
		Store:      c,
		Auth:       c,
		OnVerified: onVerified,
	})
}
