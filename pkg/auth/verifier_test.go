package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifyHS256(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("Should accept a valid token", func(t *testing.T) {
		token := signHS256(t, testSecret, jwt.MapClaims{"sub": "user-1", "email": "ada@example.com", "exp": exp.Unix()})
		claims, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "ada@example.com", claims.Email)
		assert.True(t, exp.Equal(claims.ExpiresAt))
	})

	t.Run("Should reject invalid tokens", func(t *testing.T) {
		cases := map[string]string{
			"expired":      signHS256(t, testSecret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()}),
			"no expiry":    signHS256(t, testSecret, jwt.MapClaims{"sub": "user-1"}),
			"no subject":   signHS256(t, testSecret, jwt.MapClaims{"exp": exp.Unix()}),
			"wrong secret": signHS256(t, "another-secret-another-secret-another", jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()}),
			"garbage":      "not.a.jwt",
		}
		for name, token := range cases {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken, name)
		}
	})

	t.Run("Should reject HS256 when no secret is configured", func(t *testing.T) {
		token := signHS256(t, testSecret, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})
		_, err := NewVerifier("", nil).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		json.NewEncoder(w).Encode(jwksDocument{Keys: []jwk{{
			Kid: "kid-1",
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	v := NewVerifier("", NewProvider(srv.URL))

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user-2",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = "kid-1"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	claims, err := v.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject)

	// cached key, no second fetch
	_, err = v.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestProviderUnknownKidThrottled(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		json.NewEncoder(w).Encode(jwksDocument{Keys: []jwk{{Kid: "hmac", Kty: "oct"}}})
	}))
	defer srv.Close()

	now := time.Now()
	p := NewProvider(srv.URL)
	p.now = func() time.Time { return now }

	_, err := p.key("missing")
	assert.ErrorIs(t, err, errUnknownKey)
	_, err = p.key("missing")
	assert.ErrorIs(t, err, errUnknownKey)
	assert.Equal(t, int32(1), fetches.Load())

	now = now.Add(2 * minKeyRefresh)
	_, err = p.key("missing")
	assert.ErrorIs(t, err, errUnknownKey)
	assert.Equal(t, int32(2), fetches.Load())
}
