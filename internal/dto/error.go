package dto

import (
	"time"

	apperrors "crm/internal/errors"
)

type ErrorResponse struct {
	TraceID    string                       `json:"traceId"`
	Status     int                          `json:"status"`
	Code       string                       `json:"code"`
	Message    string                       `json:"message"`
	Details    []apperrors.ValidationDetail `json:"details,omitempty"`
	MissingIDs []int64                      `json:"missingIds,omitempty"`
	Timestamp  time.Time                    `json:"timestamp"`
}
