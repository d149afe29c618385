package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			again, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, again, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("some-opaque-token")

	require.Equal(t, fp, FingerprintToken("some-opaque-token"),
		"fingerprint should be deterministic")
	require.NotEqual(t, fp, FingerprintToken("another-token"))
	require.Len(t, fp, 43, "base64url of SHA-256 without padding")
}
