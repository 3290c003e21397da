package crypto

import "cifra/api/internal/core/domain"

// NewRegistry returns every classical cipher keyed by kind.
func NewRegistry(defaultShift int) map[domain.Kind]domain.Cipher {
	return map[domain.Kind]domain.Cipher{
		domain.KindCaesar:   NewCaesar(defaultShift),
		domain.KindVigenere: NewVigenere(),
		domain.KindColumnar: NewColumnar(),
	}
}
