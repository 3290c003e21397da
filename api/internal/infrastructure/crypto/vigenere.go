package crypto

import (
	"context"
	"fmt"
	"strings"

	"cifra/api/internal/core/domain"
)

// VigenereEncrypt shifts each ASCII letter of text by the matching letter of
// keyword. The keyword stream advances on letters only, so punctuation and
// whitespace are copied verbatim without consuming key material.
func VigenereEncrypt(text, keyword string) (string, error) {
	return vigenere(text, keyword, 1)
}

// VigenereDecrypt reverses VigenereEncrypt for the same keyword.
func VigenereDecrypt(text, keyword string) (string, error) {
	return vigenere(text, keyword, -1)
}

// ValidateKeyword reports whether keyword is usable: non-empty and made of
// ASCII letters only.
func ValidateKeyword(keyword string) error {
	if keyword == "" {
		return fmt.Errorf("%w: vigenere keyword cannot be empty", domain.ErrInvalidKey)
	}
	for _, r := range keyword {
		if !isLetter(r) {
			return fmt.Errorf("%w: vigenere keyword must contain letters only, found %q", domain.ErrInvalidKey, r)
		}
	}
	return nil
}

func vigenere(text, keyword string, direction int) (string, error) {
	if err := ValidateKeyword(keyword); err != nil {
		return "", err
	}
	shifts := keyStream(keyword)

	var b strings.Builder
	b.Grow(len(text))

	j := 0
	for _, r := range text {
		var out rune
		out, j = vigenereStep(r, j, shifts, direction)
		b.WriteRune(out)
	}
	return b.String(), nil
}

// vigenereStep transforms one character and returns the next keyword index.
func vigenereStep(r rune, j int, shifts []int, direction int) (rune, int) {
	if !isLetter(r) {
		return r, j
	}
	base := 'a'
	if r >= 'A' && r <= 'Z' {
		base = 'A'
	}
	return rotate(r, base, direction*shifts[j%len(shifts)]), j + 1
}

// keyStream turns a validated keyword into per-letter offsets 0-25.
func keyStream(keyword string) []int {
	keyword = strings.ToLower(keyword)
	shifts := make([]int, len(keyword))
	for i := 0; i < len(keyword); i++ {
		shifts[i] = int(keyword[i] - 'a')
	}
	return shifts
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// Vigenere adapts the keyword cipher to domain.Cipher.
type Vigenere struct{}

func NewVigenere() *Vigenere { return &Vigenere{} }

func (v *Vigenere) Kind() domain.Kind { return domain.KindVigenere }

func (v *Vigenere) Encrypt(ctx context.Context, text, key string) (domain.Result, error) {
	out, err := VigenereEncrypt(text, key)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Kind: domain.KindVigenere, Operation: domain.OpEncrypt, Text: out}, nil
}

func (v *Vigenere) Decrypt(ctx context.Context, text, key string) (domain.Result, error) {
	out, err := VigenereDecrypt(text, key)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Kind: domain.KindVigenere, Operation: domain.OpDecrypt, Text: out}, nil
}
