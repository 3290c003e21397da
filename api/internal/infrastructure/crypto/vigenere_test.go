package crypto_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cifra/api/internal/core/domain"
	"cifra/api/internal/infrastructure/crypto"
)

func TestVigenere_KnownVectors(t *testing.T) {
	enc, err := crypto.VigenereEncrypt("hello", "key")
	require.NoError(t, err)
	assert.Equal(t, "rijvs", enc)

	dec, err := crypto.VigenereDecrypt("rijvs", "key")
	require.NoError(t, err)
	assert.Equal(t, "hello", dec)

	enc, err = crypto.VigenereEncrypt("ATTACKATDAWN", "LEMON")
	require.NoError(t, err)
	assert.Equal(t, "LXFOPVEFRNHR", enc)
}

func TestVigenere_KeywordIsCaseInsensitive(t *testing.T) {
	lower, err := crypto.VigenereEncrypt("Hello World", "key")
	require.NoError(t, err)
	upper, err := crypto.VigenereEncrypt("Hello World", "KeY")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestVigenere_PreservesCase(t *testing.T) {
	enc, err := crypto.VigenereEncrypt("HeLLo", "key")
	require.NoError(t, err)
	assert.Equal(t, "RiJVs", enc)
}

func TestVigenere_NonLettersDoNotAdvanceKeyword(t *testing.T) {
	// The space and comma must not consume key letters: "he" uses k,e and
	// "llo" continues with y,k,e.
	enc, err := crypto.VigenereEncrypt("he, llo", "key")
	require.NoError(t, err)
	assert.Equal(t, "ri, jvs", enc)
}

func TestVigenere_RoundTrip(t *testing.T) {
	texts := []string{
		"",
		"Attack at dawn!",
		"The Quick Brown Fox, 1234 -- jumps.",
		"ÑANDÚ mixed ñ text",
		strings.Repeat("abcXYZ ", 40),
	}
	keys := []string{"a", "key", "LEMON", "zZz", "Supercalifragilistic"}

	for _, text := range texts {
		for _, key := range keys {
			enc, err := crypto.VigenereEncrypt(text, key)
			require.NoError(t, err)
			dec, err := crypto.VigenereDecrypt(enc, key)
			require.NoError(t, err)
			assert.Equal(t, text, dec, "key %q", key)
		}
	}
}

func TestVigenere_KeywordOfAIsIdentity(t *testing.T) {
	for _, key := range []string{"a", "aaaa", "AaA"} {
		enc, err := crypto.VigenereEncrypt("Identity Check!", key)
		require.NoError(t, err)
		assert.Equal(t, "Identity Check!", enc)
	}
}

func TestVigenere_RejectsInvalidKeywords(t *testing.T) {
	for _, key := range []string{"", "abc1", "with space", "ñ", "key!"} {
		_, err := crypto.VigenereEncrypt("hello", key)
		assert.ErrorIs(t, err, domain.ErrInvalidKey, "key %q", key)

		_, err = crypto.VigenereDecrypt("hello", key)
		assert.ErrorIs(t, err, domain.ErrInvalidKey, "key %q", key)
	}
}

func TestVigenereCipher_Adapter(t *testing.T) {
	v := crypto.NewVigenere()
	assert.Equal(t, domain.KindVigenere, v.Kind())

	res, err := v.Encrypt(context.Background(), "hello", "key")
	require.NoError(t, err)
	assert.Equal(t, domain.Result{Kind: domain.KindVigenere, Operation: domain.OpEncrypt, Text: "rijvs"}, res)

	_, err = v.Decrypt(context.Background(), "rijvs", "")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}
