package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/dqsync/internal/config"
)

func TestNewTokenService_Misconfigured(t *testing.T) {
	_, err := NewTokenService(config.AuthConfig{TokenTTL: time.Hour})
	assert.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewTokenService(config.AuthConfig{JWTSecret: "s", TokenTTL: 0})
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour})
	require.NoError(t, err)

	tok, err := svc.IssueToken("ci-bot")
	require.NoError(t, err)
	assert.EqualValues(t, 3600, tok.ExpiresIn)

	user, err := svc.ParseAccessToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ci-bot", user.Subject)
}

func TestTokenService_Rejects(t *testing.T) {
	svc, err := NewTokenService(config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour})
	require.NoError(t, err)
	other, err := NewTokenService(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour})
	require.NoError(t, err)

	foreign, err := other.IssueToken("ci-bot")
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(foreign.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.IssueToken("ci-bot")
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ParseAccessToken(expired.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x", Issuer: tokenIssuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.IssueToken("")
	assert.Error(t, err)
}
