package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daoapi/internal/config"
	"daoapi/internal/model"
)

func newTestIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	i, err := NewIssuer(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "daoapi"})
	require.NoError(t, err)
	i.now = func() time.Time { return now }
	return i
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer(config.AuthConfig{JWTSecret: "  "})
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	i := newTestIssuer(t, now)

	token, exp, err := i.Issue(42, model.CapabilityProjectLead)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	v, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.Viewer{UserID: 42, Capability: model.CapabilityProjectLead}, v)
}

func TestIssuer_Parse_Rejects(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	i := newTestIssuer(t, now)

	t.Run("expired", func(t *testing.T) {
		token, _, err := i.Issue(42, model.CapabilityAdmin)
		require.NoError(t, err)

		later := newTestIssuer(t, now.Add(2*time.Hour))
		_, err = later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewIssuer(config.AuthConfig{JWTSecret: "other", Issuer: "daoapi"})
		require.NoError(t, err)
		token, _, err := other.Issue(42, model.CapabilityAdmin)
		require.NoError(t, err)

		_, err = i.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "42",
			"iss": "daoapi",
			"exp": now.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = i.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "alice",
			"iss": "daoapi",
			"exp": now.Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = i.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := i.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("motdepasse")
	require.NoError(t, err)
	assert.NotEqual(t, "motdepasse", hash)
	assert.True(t, CheckPassword(hash, "motdepasse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "motdepasse"))
}
