package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
		len  int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.len)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
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
	require.Equal(t, FingerprintToken("a"), FingerprintToken("a"))
	require.NotEqual(t, FingerprintToken("a"), FingerprintToken("b"))
	require.Len(t, FingerprintToken("a"), 12)
	require.Empty(t, FingerprintToken(""))
}

func TestSealer(t *testing.T) {
	s, err := NewSealer([]byte("master-key-material"), "session")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte(`{"access_token":"abc"}`))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		plain, err := s.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, `{"access_token":"abc"}`, string(plain))
	})

	t.Run("same key material opens", func(t *testing.T) {
		other, err := NewSealer([]byte("master-key-material"), "session")
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.NoError(t, err)
	})

	t.Run("different purpose cannot open", func(t *testing.T) {
		other, err := NewSealer([]byte("master-key-material"), "cookies")
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.Error(t, err)
	})

	t.Run("tampered data rejected", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0xff
		_, err := s.Open(tampered)
		require.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := s.Open([]byte("short"))
		require.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("ephemeral key", func(t *testing.T) {
		a, err := NewSealer(nil, "session")
		require.NoError(t, err)
		b, err := NewSealer(nil, "session")
		require.NoError(t, err)

		sealed, err := a.Seal([]byte("x"))
		require.NoError(t, err)
		_, err = b.Open(sealed)
		require.Error(t, err)
	})
}
