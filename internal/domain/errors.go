package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Is makes wrapped copies produced by WithError match their sentinel via
// errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing webhook token",
		StatusCode: 401,
	}

	// ErrMissingField rejects payloads without the labels required for
	// routing to a status page. Non-retryable.
	ErrMissingField = &AppError{
		Code:       "MISSING_FIELD",
		Message:    "Payload is missing a required field",
		StatusCode: 400,
	}

	// ErrInvalidEnum rejects unrecognized impact, component status or
	// incident status values instead of silently defaulting them.
	ErrInvalidEnum = &AppError{
		Code:       "INVALID_ENUM",
		Message:    "Payload contains an unrecognized enum value",
		StatusCode: 422,
	}

	ErrRecordNotFound = &AppError{
		Code:       "RECORD_NOT_FOUND",
		Message:    "No incident record for group key",
		StatusCode: 404,
	}

	ErrRecordExists = &AppError{
		Code:       "RECORD_EXISTS",
		Message:    "Incident record already exists for group key",
		StatusCode: 409,
	}

	// ErrVersionConflict surfaces after the bounded compare-and-swap retry
	// loop is exhausted. Retryable: the alerting manager should redeliver.
	ErrVersionConflict = &AppError{
		Code:       "VERSION_CONFLICT",
		Message:    "Concurrent reconciliation for the same group key, retry later",
		StatusCode: 503,
	}

	// ErrRemoteFailure means a Statuspage API call failed and no state was
	// committed. Retryable.
	ErrRemoteFailure = &AppError{
		Code:       "STATUSPAGE_UNAVAILABLE",
		Message:    "Statuspage API call failed, no state was committed",
		StatusCode: 502,
	}
)

// MissingField builds a non-retryable validation error naming the absent
// label or field.
func MissingField(field string) *AppError {
	return ErrMissingField.WithError(fmt.Errorf("missing field %q", field))
}

// InvalidEnum builds a non-retryable validation error naming the offending
// field and value.
func InvalidEnum(field, value string) *AppError {
	return ErrInvalidEnum.WithError(fmt.Errorf("field %q has unrecognized value %q", field, value))
}
