// Package api holds the JSON helpers shared by every HTTP controller.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm/internal/dto"
	apperrors "crm/internal/errors"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeEmptyInput = "EMPTY_INPUT"
	CodeDuplicate  = "DUPLICATE"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
	CodeTransient  = "TRANSIENT_IO_ERROR"
	CodeCommit     = "COMMIT_FAILED"
)

// Trace starts a request trace: a fresh trace id and a logger carrying it.
func Trace(logger *zap.Logger) (string, *zap.Logger) {
	traceID := uuid.New().String()
	return traceID, logger.With(zap.String("traceId", traceID))
}

func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// PathID parses a positive integer path parameter.
func PathID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+field, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be a positive integer",
		})
	}
	return id, nil
}

func WriteJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps a typed error to its HTTP status and writes the error body.
// Unknown errors are logged and reported as a generic 500.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	resp := dto.ErrorResponse{
		TraceID:   traceID,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Status = http.StatusBadRequest
		resp.Code = CodeValidation
		resp.Details = ve.Details
	} else if ee, ok := apperrors.IsEmptyInputError(err); ok {
		resp.Status = http.StatusBadRequest
		resp.Code = CodeEmptyInput
		resp.Details = []apperrors.ValidationDetail{{Field: ee.Field, Message: ee.Message}}
	} else if de, ok := apperrors.IsDuplicateError(err); ok {
		resp.Status = http.StatusConflict
		resp.Code = CodeDuplicate
		resp.Details = []apperrors.ValidationDetail{{Field: de.Field, Message: de.Message}}
	} else if nf, ok := apperrors.IsNotFoundError(err); ok {
		resp.Status = http.StatusNotFound
		resp.Code = CodeNotFound
		resp.MissingIDs = nf.MissingIDs
	} else if _, ok := apperrors.IsTransientIOError(err); ok {
		logger.Error("retries exhausted", zap.Error(err))
		resp.Status = http.StatusInternalServerError
		resp.Code = CodeTransient
		resp.Message = "a transient storage error persisted after retries"
	} else if fe, ok := apperrors.IsFatalCommitError(err); ok {
		logger.Error("batch commit failed", zap.String("kind", fe.Kind), zap.Error(err))
		resp.Status = http.StatusInternalServerError
		resp.Code = CodeCommit
		resp.Message = "the batch could not be committed; nothing was saved"
	} else {
		logger.Error("unexpected error", zap.Error(err))
		resp.Status = http.StatusInternalServerError
		resp.Code = CodeInternal
		resp.Message = "an unexpected error occurred"
	}

	if resp.Status < http.StatusInternalServerError {
		logger.Warn("request rejected", zap.Int("status", resp.Status), zap.String("code", resp.Code), zap.Error(err))
	}

	WriteJSON(w, resp.Status, resp, logger)
}

// QueryInt reads an optional non-negative integer query parameter.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a non-negative integer",
		})
	}
	return n, nil
}

// QueryTime reads an optional RFC 3339 timestamp or YYYY-MM-DD date query parameter.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
		Field:   name,
		Message: name + " must be an RFC 3339 timestamp or a YYYY-MM-DD date",
	})
}
