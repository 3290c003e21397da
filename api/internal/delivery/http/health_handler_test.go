package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cifra/api/internal/core/domain"
	delivery "cifra/api/internal/delivery/http"
)

type stubService struct {
	selfTestErr error
}

func (stubService) Ciphers() []domain.CipherInfo { return nil }

func (stubService) Transform(ctx context.Context, req domain.TransformRequest) (domain.Result, error) {
	return domain.Result{}, nil
}

func (s stubService) SelfTest(ctx context.Context) error { return s.selfTestErr }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantState  string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"self-test failure", errors.New("vector mismatch"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := delivery.NewHealthHandler(stubService{selfTestErr: tt.err})
			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var report delivery.HealthReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tt.wantState, report.Status)
		})
	}
}
