package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(DeriveKey("shared-passphrase"))
	require.NoError(t, err)

	cases := []string{
		"hi",
		"",
		"a longer message with spaces and punctuation!?",
		"unicode: приве́т, 你好, 🙂",
	}

	for _, plaintext := range cases {
		ciphertext, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		got, err := c.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptIsRandomized(t *testing.T) {
	t.Parallel()

	c, err := New(DeriveKey("shared-passphrase"))
	require.NoError(t, err)

	first, err := c.Encrypt("same message")
	require.NoError(t, err)
	second, err := c.Encrypt("same message")
	require.NoError(t, err)

	// fresh nonce per message
	assert.NotEqual(t, first, second)
}

func TestDecryptWrongKey(t *testing.T) {
	t.Parallel()

	right, err := New(DeriveKey("right-passphrase"))
	require.NoError(t, err)
	wrong, err := New(DeriveKey("wrong-passphrase"))
	require.NoError(t, err)

	ciphertext, err := right.Encrypt("secret")
	require.NoError(t, err)

	_, err = wrong.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecryptCorruptInput(t *testing.T) {
	t.Parallel()

	c, err := New(DeriveKey("shared-passphrase"))
	require.NoError(t, err)

	for _, input := range []string{
		"not base64 !!!",
		"",
		"c2hvcnQ=", // valid base64, shorter than a nonce
	} {
		_, err := c.Decrypt(input)
		assert.ErrorIs(t, err, ErrUnreadable, "input %q", input)
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DeriveKey("p"), DeriveKey("p"))
	assert.NotEqual(t, DeriveKey("p"), DeriveKey("q"))
	assert.Len(t, DeriveKey("p"), 32)
}

func TestNewRejectsBadKey(t *testing.T) {
	t.Parallel()

	_, err := New([]byte("too short"))
	assert.Error(t, err)
}
