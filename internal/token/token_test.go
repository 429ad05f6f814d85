package token

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestDecode_ReadsPayloadWithoutVerifying(t *testing.T) {
	ft := false
	raw := sign(t, Claims{
		Email:     "ada@example.com",
		FirstTime: &ft,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	require.NotNil(t, claims.FirstTime)
	assert.False(t, *claims.FirstTime)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode("not-a-token")
	assert.Error(t, err)
}

func TestDecode_RejectsMissingSubject(t *testing.T) {
	raw := sign(t, Claims{Email: "ada@example.com"})
	_, err := Decode(raw)
	assert.Error(t, err)
}

func TestOnboardingRequired(t *testing.T) {
	tr, fa := true, false

	assert.True(t, Claims{}.OnboardingRequired(), "absent claim defaults to required")
	assert.True(t, Claims{FirstTime: &tr}.OnboardingRequired())
	assert.False(t, Claims{FirstTime: &fa}.OnboardingRequired(), "only an explicit false clears it")
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "token")
	s := NewStore(path)

	_, ok := s.Load()
	assert.False(t, ok, "empty store has no token")

	require.NoError(t, s.Save("raw-token"))
	raw, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, "raw-token", raw)

	// Token files must not be world readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Clear())
	_, ok = s.Load()
	assert.False(t, ok)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}
