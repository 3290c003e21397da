package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cifra/api/internal/core/domain"
)

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthHandler struct {
	service domain.CipherService
}

func NewHealthHandler(service domain.CipherService) *HealthHandler {
	return &HealthHandler{service: service}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	// Health checks must answer quickly even when the service is saturated.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if err := h.service.SelfTest(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthReport{Status: "unhealthy", Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthReport{Status: "healthy"})
}
