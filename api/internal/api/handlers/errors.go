package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"cifra/api/internal/core/domain"
)

// Use a single instance of Validate, it caches struct info
var validate = validator.New()

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

// HandleError maps domain and validation errors to HTTP responses. Unknown
// errors are logged and reported as a generic 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("Unhandled API error",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, ErrorResponse) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
		}
		return http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Code: "validation_failed", Fields: fields}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, ErrorResponse{Message: "Request body too large", Code: "body_too_large"}
	}
	if errors.Is(err, errBadJSON) {
		return http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON payload", Code: "bad_json"}
	}

	code := domain.ErrorCode(err)
	switch {
	case errors.Is(err, domain.ErrUnknownCipher), errors.Is(err, domain.ErrUnknownOperation):
		return http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: code}
	case errors.Is(err, domain.ErrInvalidKey), errors.Is(err, domain.ErrInvalidColumnCount), errors.Is(err, domain.ErrEmptyInput):
		return http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error(), Code: code}
	case errors.Is(err, domain.ErrInputTooLong):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Message: err.Error(), Code: code}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrorResponse{Message: "Request canceled", Code: code}
	}
	return http.StatusInternalServerError, ErrorResponse{Message: "Internal server error", Code: "internal"}
}

// decodeJSON decodes a request body strictly. Body size errors are passed
// through so HandleError can report them as 413.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return errBadJSON
	}
	return nil
}

var errBadJSON = errors.New("invalid JSON payload")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
