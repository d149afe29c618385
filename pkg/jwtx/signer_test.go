package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "gatekeeper-test"
	testAudience = "gatekeeper-api"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(testSecret, testIssuer, testAudience)
	require.NoError(t, err)
	return s
}

func TestNewSigner_Validation(t *testing.T) {
	_, err := NewSigner([]byte("too-short"), testIssuer, testAudience)
	require.Error(t, err)

	_, err = NewSigner(testSecret, "", testAudience)
	require.Error(t, err)

	_, err = NewSigner(testSecret, testIssuer, "")
	require.Error(t, err)
}

func TestSignAndVerify_AccessRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	now := time.Now().UTC()

	claims := NewAccessClaims("user-1", "a@b.com", "admin", time.Minute, testIssuer, testAudience, now)
	token, err := s.Sign(claims)
	require.NoError(t, err)

	got, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "a@b.com", got.Email)
	require.Equal(t, "admin", got.Role)
	require.False(t, got.IsRefresh())
}

func TestSignAndVerify_RefreshRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	now := time.Now().UTC()

	claims := NewRefreshClaims("user-1", "rotation-id", time.Hour, testIssuer, testAudience, now)
	token, err := s.Sign(claims)
	require.NoError(t, err)

	got, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "rotation-id", got.TID)
	require.True(t, got.IsRefresh())
	require.Empty(t, got.Email)
}

func TestVerify_Expired(t *testing.T) {
	s := newTestSigner(t)
	past := time.Now().UTC().Add(-2 * time.Hour)

	token, err := s.Sign(NewAccessClaims("user-1", "a@b.com", "regular", time.Minute, testIssuer, testAudience, past))
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_InvalidSignature(t *testing.T) {
	s := newTestSigner(t)
	other, err := NewSigner([]byte(strings.Repeat("x", 32)), testIssuer, testAudience)
	require.NoError(t, err)

	token, err := other.Sign(NewAccessClaims("user-1", "a@b.com", "regular", time.Minute, testIssuer, testAudience, time.Now().UTC()))
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerify_IssuerMismatch(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(NewAccessClaims("user-1", "a@b.com", "regular", time.Minute, "someone-else", testAudience, time.Now().UTC()))
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerify_AudienceMismatch(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(NewAccessClaims("user-1", "a@b.com", "regular", time.Minute, testIssuer, "other-api", time.Now().UTC()))
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrAudience)
}

func TestVerify_Malformed(t *testing.T) {
	s := newTestSigner(t)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := s.Verify(token)
		require.Error(t, err)
	}
}
