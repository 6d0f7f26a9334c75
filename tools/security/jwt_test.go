package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "conecta/tools/errs"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	token, expireAt, err := Generate(opts, "42", "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expireAt, 5*time.Second)

	claims, err := Verify(opts, token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestVerifyEmptyToken(t *testing.T) {
	opts := DefaultOptions([]byte("s"))
	_, err := Verify(opts, "  ")
	require.Error(t, err)
	assert.True(t, errs.ErrTokenMissing.Is(err))
}

func TestVerifyExpiredToken(t *testing.T) {
	opts := DefaultOptions([]byte("s"))

	// Generate coerces TTL<=0, so sign an already-expired token directly.
	past := time.Now().Add(-time.Hour)
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		UserID: "42",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwtlib.NewNumericDate(past),
			ExpiresAt: jwtlib.NewNumericDate(past.Add(time.Minute)),
		},
	})
	token, err := tok.SignedString(opts.Secret)
	require.NoError(t, err)

	_, err = Verify(opts, token)
	require.Error(t, err)
	assert.True(t, errs.ErrTokenExpired.Is(err))
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("right")), "42", "")
	require.NoError(t, err)

	_, err = Verify(DefaultOptions([]byte("wrong")), token)
	require.Error(t, err)
	assert.True(t, errs.ErrTokenInvalid.Is(err))
}

func TestVerifyGarbageToken(t *testing.T) {
	_, err := Verify(DefaultOptions([]byte("s")), "not.a.jwt")
	require.Error(t, err)
	assert.True(t, errs.ErrTokenInvalid.Is(err))
}

func TestAlgVariants(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512", "hs256", ""} {
		opts := Options{Secret: []byte("s"), Alg: alg, TTL: time.Hour}
		token, _, err := Generate(opts, "7", "")
		require.NoError(t, err, alg)
		claims, err := Verify(opts, token)
		require.NoError(t, err, alg)
		assert.Equal(t, "7", claims.UserID)
	}
}

func TestUnsupportedAlg(t *testing.T) {
	_, _, err := Generate(Options{Secret: []byte("s"), Alg: "RS256"}, "7", "")
	require.Error(t, err)
}
