package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names one of the classical ciphers served by the engine.
type Kind string

const (
	KindCaesar   Kind = "caesar"
	KindVigenere Kind = "vigenere"
	KindColumnar Kind = "columnar"
)

// Kinds lists every supported cipher in catalogue order.
var Kinds = []Kind{KindCaesar, KindVigenere, KindColumnar}

// ParseKind resolves a cipher name, including the legacy names the web form used.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "caesar", "cesar":
		return KindCaesar, nil
	case "vigenere":
		return KindVigenere, nil
	case "columnar", "espartano", "spartan", "scytale", "transposition":
		return KindColumnar, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// Operation is the direction of a transform.
type Operation string

const (
	OpEncrypt Operation = "encrypt"
	OpDecrypt Operation = "decrypt"
)

func ParseOperation(name string) (Operation, error) {
	switch Operation(strings.ToLower(strings.TrimSpace(name))) {
	case OpEncrypt:
		return OpEncrypt, nil
	case OpDecrypt:
		return OpDecrypt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Grid is the row-major character matrix produced by columnar transposition.
// Every row holds exactly one single-character string per column.
type Grid [][]string

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int { return len(g) }

// Columns returns the width of the grid, zero for an empty grid.
func (g Grid) Columns() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Result is the value returned by every transform. Grid is only set by
// the columnar cipher.
type Result struct {
	Kind      Kind      `json:"cipher"`
	Operation Operation `json:"operation"`
	Text      string    `json:"text"`
	Grid      Grid      `json:"grid,omitempty"`
}

// Cipher is the stateless contract shared by all classical ciphers.
// The key is passed raw; each implementation parses it into its own
// parameter type (shift, keyword, column count).
type Cipher interface {
	Kind() Kind
	Encrypt(ctx context.Context, text, key string) (Result, error)
	Decrypt(ctx context.Context, text, key string) (Result, error)
}

// CipherInfo describes a registered cipher for API catalogues.
type CipherInfo struct {
	Kind        Kind   `json:"cipher"`
	Name        string `json:"name"`
	KeyHint     string `json:"key_hint"`
	KeyRequired bool   `json:"key_required"`
}

// TransformRequest is a single unit of work addressed to the cipher service.
type TransformRequest struct {
	Kind      Kind
	Operation Operation
	Text      string
	Key       string
	Sanitize  bool
}

// CipherService is the transport-facing contract of the engine.
type CipherService interface {
	Ciphers() []CipherInfo
	Transform(ctx context.Context, req TransformRequest) (Result, error)
	SelfTest(ctx context.Context) error
}

var (
	ErrInvalidKey         = errors.New("invalid key")
	ErrInvalidColumnCount = errors.New("invalid column count")
	ErrInputTooLong       = errors.New("input too long")
	ErrUnknownCipher      = errors.New("unknown cipher")
	ErrUnknownOperation   = errors.New("unknown operation")
)

// ErrEmptyInput is for callers that require non-empty text. The engine
// never returns it: empty text is an identity transform.
var ErrEmptyInput = errors.New("empty input")

// ErrorCode maps an engine error to a stable machine-readable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, ErrInvalidColumnCount):
		return "invalid_column_count"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrInputTooLong):
		return "input_too_long"
	case errors.Is(err, ErrUnknownCipher):
		return "unknown_cipher"
	case errors.Is(err, ErrUnknownOperation):
		return "unknown_operation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}
