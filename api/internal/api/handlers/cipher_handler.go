package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cifra/api/internal/core/domain"
	"cifra/api/internal/workers"
)

// ==============================================================================
// 1. Request Payloads (Input Validation)
// ==============================================================================

type TransformPayload struct {
	Text     string `json:"text" validate:"max=65536"`
	Key      string `json:"key" validate:"max=256"`
	Sanitize bool   `json:"sanitize"`
}

type BatchItemPayload struct {
	Cipher    string `json:"cipher" validate:"required,max=32"`
	Operation string `json:"operation" validate:"required,oneof=encrypt decrypt"`
	Text      string `json:"text" validate:"max=65536"`
	Key       string `json:"key" validate:"max=256"`
	Sanitize  bool   `json:"sanitize"`
}

type BatchPayload struct {
	Items []BatchItemPayload `json:"items" validate:"required,min=1,dive"`
}

type BatchResponse struct {
	Items []workers.BatchItem `json:"items"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type CipherHandler struct {
	Service      domain.CipherService
	Batch        *workers.BatchRunner
	MaxBatchSize int
}

func NewCipherHandler(service domain.CipherService, batch *workers.BatchRunner, maxBatchSize int) *CipherHandler {
	return &CipherHandler{
		Service:      service,
		Batch:        batch,
		MaxBatchSize: maxBatchSize,
	}
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// List handles GET /api/v1/ciphers
func (h *CipherHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Ciphers())
}

// Encrypt handles POST /api/v1/ciphers/{kind}/encrypt
func (h *CipherHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	h.transform(w, r, domain.OpEncrypt)
}

// Decrypt handles POST /api/v1/ciphers/{kind}/decrypt
func (h *CipherHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	h.transform(w, r, domain.OpDecrypt)
}

func (h *CipherHandler) transform(w http.ResponseWriter, r *http.Request, op domain.Operation) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req TransformPayload
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	res, err := h.Service.Transform(r.Context(), domain.TransformRequest{
		Kind:      kind,
		Operation: op,
		Text:      req.Text,
		Key:       req.Key,
		Sanitize:  req.Sanitize,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// RunBatch handles POST /api/v1/batch
func (h *CipherHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchPayload
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}
	if len(req.Items) > h.MaxBatchSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: fmt.Sprintf("batch of %d items exceeds limit of %d", len(req.Items), h.MaxBatchSize),
			Code:    "batch_too_large",
		})
		return
	}

	reqs := make([]domain.TransformRequest, len(req.Items))
	for i, item := range req.Items {
		tr, err := toTransformRequest(item.Cipher, item.Operation, item.Text, item.Key, item.Sanitize)
		if err != nil {
			HandleError(w, r, fmt.Errorf("item %d: %w", i, err))
			return
		}
		reqs[i] = tr
	}

	writeJSON(w, http.StatusOK, BatchResponse{Items: h.Batch.Run(r.Context(), reqs)})
}

func toTransformRequest(cipher, operation, text, key string, sanitize bool) (domain.TransformRequest, error) {
	kind, err := domain.ParseKind(cipher)
	if err != nil {
		return domain.TransformRequest{}, err
	}
	op, err := domain.ParseOperation(operation)
	if err != nil {
		return domain.TransformRequest{}, err
	}
	return domain.TransformRequest{Kind: kind, Operation: op, Text: text, Key: key, Sanitize: sanitize}, nil
}
