package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"cifra/api/internal/core/domain"
	"cifra/api/internal/core/utils"
	"cifra/api/internal/infrastructure/crypto"
)

// CipherLimits bounds the work a single transform may request.
type CipherLimits struct {
	MaxInputLength int // runes
	MaxColumns     int
}

// CipherService dispatches an explicit (kind, operation) pair to the
// registered cipher. It holds no per-call state and is safe for
// concurrent use.
type CipherService struct {
	ciphers map[domain.Kind]domain.Cipher
	limits  CipherLimits
	events  domain.EventPublisher
	logger  *slog.Logger
}

func NewCipherService(
	ciphers map[domain.Kind]domain.Cipher,
	limits CipherLimits,
	events domain.EventPublisher,
	logger *slog.Logger,
) *CipherService {
	return &CipherService{
		ciphers: ciphers,
		limits:  limits,
		events:  events,
		logger:  logger,
	}
}

var catalogue = map[domain.Kind]domain.CipherInfo{
	domain.KindCaesar: {
		Kind:    domain.KindCaesar,
		Name:    "Caesar",
		KeyHint: "optional integer shift (default 3)",
	},
	domain.KindVigenere: {
		Kind:        domain.KindVigenere,
		Name:        "Vigenère",
		KeyHint:     "keyword, letters only",
		KeyRequired: true,
	},
	domain.KindColumnar: {
		Kind:        domain.KindColumnar,
		Name:        "Columnar transposition (Spartan)",
		KeyHint:     "number of columns, at least 1",
		KeyRequired: true,
	},
}

// Ciphers lists the registered ciphers in catalogue order.
func (s *CipherService) Ciphers() []domain.CipherInfo {
	out := make([]domain.CipherInfo, 0, len(s.ciphers))
	for _, kind := range domain.Kinds {
		if _, ok := s.ciphers[kind]; ok {
			out = append(out, catalogue[kind])
		}
	}
	return out
}

func (s *CipherService) Encrypt(ctx context.Context, kind domain.Kind, text, key string) (domain.Result, error) {
	return s.Transform(ctx, domain.TransformRequest{Kind: kind, Operation: domain.OpEncrypt, Text: text, Key: key})
}

func (s *CipherService) Decrypt(ctx context.Context, kind domain.Kind, text, key string) (domain.Result, error) {
	return s.Transform(ctx, domain.TransformRequest{Kind: kind, Operation: domain.OpDecrypt, Text: text, Key: key})
}

// Transform validates the request against the configured limits and runs it.
// Every validation happens before the cipher is invoked.
func (s *CipherService) Transform(ctx context.Context, req domain.TransformRequest) (domain.Result, error) {
	res, err := s.transform(ctx, req)
	s.publish(req, res, err)

	if err != nil {
		s.logger.Debug("Transform rejected",
			slog.String("cipher", string(req.Kind)),
			slog.String("operation", string(req.Operation)),
			slog.String("error", err.Error()),
		)
	}
	return res, err
}

func (s *CipherService) transform(ctx context.Context, req domain.TransformRequest) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}

	cipher, ok := s.ciphers[req.Kind]
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownCipher, req.Kind)
	}

	if req.Sanitize {
		req = sanitize(req)
	}

	if n := utf8.RuneCountInString(req.Text); n > s.limits.MaxInputLength {
		return domain.Result{}, fmt.Errorf("%w: %d characters exceeds limit of %d", domain.ErrInputTooLong, n, s.limits.MaxInputLength)
	}

	if req.Kind == domain.KindColumnar {
		columns, err := crypto.ParseColumns(req.Key)
		if err != nil {
			return domain.Result{}, err
		}
		if columns > s.limits.MaxColumns {
			return domain.Result{}, fmt.Errorf("%w: %d columns exceeds limit of %d", domain.ErrInvalidColumnCount, columns, s.limits.MaxColumns)
		}
	}

	switch req.Operation {
	case domain.OpEncrypt:
		return cipher.Encrypt(ctx, req.Text, req.Key)
	case domain.OpDecrypt:
		return cipher.Decrypt(ctx, req.Text, req.Key)
	}
	return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, req.Operation)
}

// sanitize applies the input rules of the legacy web form.
func sanitize(req domain.TransformRequest) domain.TransformRequest {
	req.Text = utils.SanitizeText(req.Text)
	switch req.Kind {
	case domain.KindVigenere:
		req.Key = utils.SanitizeKeyword(req.Key)
	case domain.KindColumnar:
		req.Key = utils.SanitizeDigits(req.Key)
	}
	return req
}

func (s *CipherService) publish(req domain.TransformRequest, res domain.Result, err error) {
	if s.events == nil {
		return
	}
	event := domain.TransformEvent{
		ID:          uuid.New(),
		Kind:        req.Kind,
		Operation:   req.Operation,
		InputLength: utf8.RuneCountInString(req.Text),
		ErrorCode:   domain.ErrorCode(err),
		At:          time.Now().UTC(),
	}
	if err == nil {
		event.OutputLength = utf8.RuneCountInString(res.Text)
	}
	s.events.Publish(event)
}

// SelfTest runs known vectors through every registered cipher.
func (s *CipherService) SelfTest(ctx context.Context) error {
	vectors := []struct {
		kind      domain.Kind
		plain     string
		key       string
		encrypted string
	}{
		{domain.KindCaesar, "Attack", "3", "Dwwdfn"},
		{domain.KindVigenere, "hello", "key", "rijvs"},
		{domain.KindColumnar, "ATTACKATDAWN", "4", "ACD TKA TAW ATN"},
	}

	for _, v := range vectors {
		cipher, ok := s.ciphers[v.kind]
		if !ok {
			continue
		}
		enc, err := cipher.Encrypt(ctx, v.plain, v.key)
		if err != nil {
			return fmt.Errorf("self-test %s encrypt: %w", v.kind, err)
		}
		if enc.Text != v.encrypted {
			return fmt.Errorf("self-test %s encrypt: got %q, want %q", v.kind, enc.Text, v.encrypted)
		}
		dec, err := cipher.Decrypt(ctx, enc.Text, v.key)
		if err != nil {
			return fmt.Errorf("self-test %s decrypt: %w", v.kind, err)
		}
		if dec.Text != v.plain {
			return fmt.Errorf("self-test %s decrypt: got %q, want %q", v.kind, dec.Text, v.plain)
		}
	}
	return nil
}
