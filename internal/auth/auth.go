// Package auth issues and checks the credentials the portal hands out:
// HS256 access tokens, opaque refresh tokens, bcrypt password hashes and
// one-time numeric codes.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"planportal/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by access tokens. Subject is the user ID.
type Claims struct {
	Email string     `json:"email,omitempty"`
	Phone string     `json:"phone,omitempty"`
	Role  model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// VerificationClaims name the contact a one-time code proved control of.
// Subject is the account bound to the contact, empty when there is none.
type VerificationClaims struct {
	Channel model.OTPChannel `json:"channel"`
	Contact string           `json:"contact"`
	jwt.RegisteredClaims
}

const verificationAudience = "otp-verification"

// Issuer signs and parses access and verification tokens.
type Issuer struct {
	secret    []byte
	verifyKey []byte
	expiry    time.Duration
}

func NewIssuer(secret string, accessExpiry time.Duration) *Issuer {
	// Verification tokens get their own key so the JWT middleware, which only
	// knows the access secret, rejects them.
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(verificationAudience))
	return &Issuer{secret: []byte(secret), verifyKey: m.Sum(nil), expiry: accessExpiry}
}

// Secret is the HS256 key, shared with the JWT middleware.
func (i *Issuer) Secret() []byte { return i.secret }

// Expiry is the access token lifetime.
func (i *Issuer) Expiry() time.Duration { return i.expiry }

// Access signs an access token for u valid from now.
func (i *Issuer) Access(u *model.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.expiry)
	claims := Claims{
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates an access token and returns its claims.
func (i *Issuer) Parse(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}

// Verification signs a proof that id.Contact was verified, valid for ttl.
func (i *Issuer) Verification(id model.Identity, now time.Time, ttl time.Duration) (string, error) {
	claims := VerificationClaims{
		Channel: id.Channel,
		Contact: id.Contact,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Audience:  jwt.ClaimStrings{verificationAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.verifyKey)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// ParseVerification validates a verification token and returns the
// identity it proves.
func (i *Issuer) ParseVerification(token string) (model.Identity, error) {
	var claims VerificationClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.verifyKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(verificationAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return model.Identity{Channel: claims.Channel, Contact: claims.Contact, UserID: claims.Subject}, nil
}

// NewRefreshToken returns a random opaque token and the hash to store.
func NewRefreshToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, HashToken(raw), nil
}

// HashToken is the stored form of a refresh token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty hash never matches.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateCode returns n random decimal digits.
func GenerateCode(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + d.Int64())
	}
	return string(out), nil
}

// HashCode binds a code to its challenge so stored hashes cannot be replayed
// across challenges.
func HashCode(secret []byte, challengeID, code string) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(challengeID))
	m.Write([]byte{0})
	m.Write([]byte(code))
	return hex.EncodeToString(m.Sum(nil))
}

// CodeMatches compares in constant time.
func CodeMatches(secret []byte, challengeID, code, hash string) bool {
	return hmac.Equal([]byte(HashCode(secret, challengeID, code)), []byte(hash))
}
