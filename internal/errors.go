package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDuration        ErrorCode = "INVALID_DURATION"
	ErrCodeInvalidDate            ErrorCode = "INVALID_DATE"
	ErrCodeMissingRequiredAnswers ErrorCode = "MISSING_REQUIRED_ANSWERS"
	ErrCodeInvalidTargetType      ErrorCode = "INVALID_TARGET_TYPE"
	ErrCodeMissingTarget          ErrorCode = "MISSING_TARGET"

	ErrCodeAlreadyOpen      ErrorCode = "ALREADY_OPEN"
	ErrCodeNoOpenSession    ErrorCode = "NO_OPEN_SESSION"
	ErrCodeNoActiveTimer    ErrorCode = "NO_ACTIVE_TIMER"
	ErrCodeDayNotStarted    ErrorCode = "DAY_NOT_STARTED"
	ErrCodeAlreadySubmitted ErrorCode = "ALREADY_SUBMITTED"
	ErrCodeAlreadyProcessed ErrorCode = "ALREADY_PROCESSED"

	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotAMember   ErrorCode = "NOT_A_MEMBER"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on the error code, so an error built with details still
// satisfies errors.Is against the package sentinel of the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause returns a copy carrying cause; sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrInvalidDuration        = NewValidationError("duration must be greater than zero minutes", ErrCodeInvalidDuration)
	ErrInvalidDate            = NewValidationError("date must be formatted as YYYY-MM-DD", ErrCodeInvalidDate)
	ErrMissingRequiredAnswers = NewValidationError("required questions are unanswered", ErrCodeMissingRequiredAnswers)
	ErrInvalidTargetType      = NewValidationError("target type must be one of user, group, role", ErrCodeInvalidTargetType)
	ErrMissingTarget          = NewValidationError("assignment target is required", ErrCodeMissingTarget)

	ErrAlreadyOpen      = NewConflictError("an open entry of this type already exists", ErrCodeAlreadyOpen)
	ErrNoOpenSession    = NewConflictError("no open day session", ErrCodeNoOpenSession)
	ErrNoActiveTimer    = NewConflictError("no active timer for this task", ErrCodeNoActiveTimer)
	ErrDayNotStarted    = NewConflictError("day session has not been started", ErrCodeDayNotStarted)
	ErrAlreadySubmitted = NewConflictError("report already submitted for this date", ErrCodeAlreadySubmitted)
	ErrAlreadyProcessed = NewConflictError("already approved or rejected", ErrCodeAlreadyProcessed)

	ErrForbidden    = NewForbiddenError("operation not permitted", ErrCodeForbidden)
	ErrNotAMember   = NewForbiddenError("not a member of this organization", ErrCodeNotAMember)
	ErrNotFound     = NewNotFoundError("resource not found", ErrCodeNotFound)
	ErrTaskNotFound = NewNotFoundError("task not found", ErrCodeTaskNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

// IsAppError unwraps err until it finds an *AppError.
func IsAppError(err error) (*AppError, bool) {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
