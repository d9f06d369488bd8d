package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

type Reason string

const (
	ReasonInvalidName        Reason = "INVALID_NAME"
	ReasonInvalidEmailFormat Reason = "INVALID_EMAIL_FORMAT"
	ReasonInvalidPhoneFormat Reason = "INVALID_PHONE_FORMAT"
	ReasonInvalidPrice       Reason = "INVALID_PRICE"
	ReasonInvalidStock       Reason = "INVALID_STOCK"
	ReasonInvalidRequest     Reason = "INVALID_REQUEST"
	ReasonDuplicateEmail     Reason = "DUPLICATE_EMAIL"
	ReasonNotFound           Reason = "NOT_FOUND"
	ReasonEmptyInput         Reason = "EMPTY_INPUT"
	ReasonStorageFailure     Reason = "STORAGE_FAILURE"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Reason  Reason
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Reason:  ReasonInvalidRequest,
		Message: message,
		Details: details,
	}
}

// NewFieldError builds a ValidationError for a single field with a typed reason.
func NewFieldError(reason Reason, field, message string) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Message: message,
		Details: []ValidationDetail{{Field: field, Message: message}},
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// DuplicateError reports a uniqueness violation, whether it was caught by the
// pre-insert lookup or surfaced by the storage constraint.
type DuplicateError struct {
	Field   string
	Value   string
	Message string
	Cause   error
}

func (e *DuplicateError) Error() string {
	return e.Message
}

func (e *DuplicateError) Unwrap() error {
	return e.Cause
}

func NewDuplicateError(field, value string, cause error) *DuplicateError {
	return &DuplicateError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("duplicate %s: %s", field, value),
		Cause:   cause,
	}
}

func IsDuplicateError(err error) (*DuplicateError, bool) {
	var de *DuplicateError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type NotFoundError struct {
	Entity     string
	MissingIDs []int64
	Message    string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// NewMissingIDsError lists every id of entity that could not be resolved.
func NewMissingIDsError(entity string, ids []int64) *NotFoundError {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return &NotFoundError{
		Entity:     entity,
		MissingIDs: ids,
		Message:    fmt.Sprintf("invalid %s ids: %s", entity, strings.Join(parts, ", ")),
	}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if stderrors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

type EmptyInputError struct {
	Field   string
	Message string
}

func (e *EmptyInputError) Error() string {
	return e.Message
}

func NewEmptyInputError(field, message string) *EmptyInputError {
	return &EmptyInputError{Field: field, Message: message}
}

func IsEmptyInputError(err error) (*EmptyInputError, bool) {
	var ee *EmptyInputError
	if stderrors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// TransientIOError marks a network or storage failure that may succeed on retry.
type TransientIOError struct {
	Op    string
	Cause error
}

func (e *TransientIOError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return e.Op
}

func (e *TransientIOError) Unwrap() error {
	return e.Cause
}

func NewTransientIOError(op string, cause error) *TransientIOError {
	return &TransientIOError{Op: op, Cause: cause}
}

func IsTransientIOError(err error) (*TransientIOError, bool) {
	var te *TransientIOError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// FatalCommitError is returned when the top-level commit of a batch fails.
// Every provisional item result of that batch is void.
type FatalCommitError struct {
	Kind  string
	Cause error
}

func (e *FatalCommitError) Error() string {
	return fmt.Sprintf("committing %s batch: %v", e.Kind, e.Cause)
}

func (e *FatalCommitError) Unwrap() error {
	return e.Cause
}

func NewFatalCommitError(kind string, cause error) *FatalCommitError {
	return &FatalCommitError{Kind: kind, Cause: cause}
}

func IsFatalCommitError(err error) (*FatalCommitError, bool) {
	var fe *FatalCommitError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// ReasonOf maps an error to the code reported for a failed batch item.
func ReasonOf(err error) Reason {
	if ve, ok := IsValidationError(err); ok {
		return ve.Reason
	}
	if _, ok := IsDuplicateError(err); ok {
		return ReasonDuplicateEmail
	}
	if _, ok := IsNotFoundError(err); ok {
		return ReasonNotFound
	}
	if _, ok := IsEmptyInputError(err); ok {
		return ReasonEmptyInput
	}
	return ReasonStorageFailure
}
