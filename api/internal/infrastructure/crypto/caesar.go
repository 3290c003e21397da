package crypto

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cifra/api/internal/core/domain"
)

// DefaultShift is the classical Caesar rotation.
const DefaultShift = 3

// CaesarEncrypt rotates every ASCII letter forward by shift positions within
// its own case. Any other character passes through unchanged.
func CaesarEncrypt(text string, shift int) string {
	return strings.Map(rotator(shift), text)
}

// CaesarDecrypt is the inverse of CaesarEncrypt for the same shift.
func CaesarDecrypt(text string, shift int) string {
	return strings.Map(rotator(-(shift % 26)), text)
}

func rotator(shift int) func(rune) rune {
	shift %= 26
	return func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return rotate(r, 'A', shift)
		case r >= 'a' && r <= 'z':
			return rotate(r, 'a', shift)
		}
		return r
	}
}

// rotate normalizes into [0,26) so negative shifts wrap correctly.
func rotate(r, base rune, shift int) rune {
	offset := int(r - base)
	return base + rune(((offset+shift)%26+26)%26)
}

// Caesar adapts the shift cipher to domain.Cipher. An empty key selects
// the configured default shift.
type Caesar struct {
	defaultShift int
}

func NewCaesar(defaultShift int) *Caesar {
	return &Caesar{defaultShift: defaultShift}
}

func (c *Caesar) Kind() domain.Kind { return domain.KindCaesar }

func (c *Caesar) Encrypt(ctx context.Context, text, key string) (domain.Result, error) {
	shift, err := c.parseShift(key)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Kind: domain.KindCaesar, Operation: domain.OpEncrypt, Text: CaesarEncrypt(text, shift)}, nil
}

func (c *Caesar) Decrypt(ctx context.Context, text, key string) (domain.Result, error) {
	shift, err := c.parseShift(key)
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Kind: domain.KindCaesar, Operation: domain.OpDecrypt, Text: CaesarDecrypt(text, shift)}, nil
}

func (c *Caesar) parseShift(key string) (int, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return c.defaultShift, nil
	}
	shift, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("%w: caesar shift must be an integer, got %q", domain.ErrInvalidKey, key)
	}
	return shift, nil
}
