package auth

import (
	"testing"
	"time"

	"planportal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_AccessAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	u := &model.User{ID: "user-1", Email: "a@firm.in", Role: model.RoleOwner}

	tok, exp, err := iss.Access(u, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, model.RoleOwner, claims.Role)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Hour).Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, _, err := iss.Access(u, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)
		_, err = iss.Parse(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssuer_Verification(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	id := model.Identity{Channel: model.ChannelEmail, Contact: "a@firm.in", UserID: "user-1"}

	tok, err := iss.Verification(id, time.Now(), 10*time.Minute)
	require.NoError(t, err)

	got, err := iss.ParseVerification(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	t.Run("not an access token", func(t *testing.T) {
		_, err := iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("access token is not a proof", func(t *testing.T) {
		access, _, err := iss.Access(&model.User{ID: "user-1"}, time.Now())
		require.NoError(t, err)
		_, err = iss.ParseVerification(access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := iss.Verification(id, time.Now().Add(-time.Hour), 10*time.Minute)
		require.NoError(t, err)
		_, err = iss.ParseVerification(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Hour).ParseVerification(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewRefreshToken(t *testing.T) {
	raw, hash, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, hash)
	assert.Equal(t, HashToken(raw), hash)

	raw2, _, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Str0ng!pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", ""))
}

func TestCode(t *testing.T) {
	for _, n := range []int{6, 8} {
		code, err := GenerateCode(n)
		require.NoError(t, err)
		assert.Len(t, code, n)
		assert.Regexp(t, `^[0-9]+$`, code)
	}

	secret := []byte("k")
	h := HashCode(secret, "otp-1", "123456")
	assert.True(t, CodeMatches(secret, "otp-1", "123456", h))
	assert.False(t, CodeMatches(secret, "otp-2", "123456", h))
	assert.False(t, CodeMatches(secret, "otp-1", "654321", h))
}
