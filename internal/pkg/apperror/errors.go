package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsInvalidState(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeInvalidState
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

var (
	ErrJobNotFound         = New(ErrCodeNotFound, "job request not found")
	ErrOfferNotFound       = New(ErrCodeNotFound, "job offer not found")
	ErrAlertNotFound       = New(ErrCodeNotFound, "search alert not found")
	ErrRatingNotFound      = New(ErrCodeNotFound, "rating not found")
	ErrUserNotFound        = New(ErrCodeNotFound, "user not found")
	ErrPropertyNotFound    = New(ErrCodeNotFound, "property not found")
	ErrLicenseNotFound     = New(ErrCodeNotFound, "license not found")
	ErrReportNotFound      = New(ErrCodeNotFound, "report not found")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "authorization required")
	ErrForbidden           = New(ErrCodeForbidden, "insufficient permissions")
	ErrInvalidCredentials  = New(ErrCodeUnauthorized, "invalid credentials")
	ErrOfferNotPending     = New(ErrCodeInvalidState, "offer is not pending anymore")
	ErrOfferAlreadyExists  = New(ErrCodeConflict, "you have already submitted an offer for this request")
	ErrJobAlreadyDeleted   = New(ErrCodeInvalidState, "job request was already deleted")
	ErrNoAcceptedOffer     = New(ErrCodeInvalidState, "no accepted offer found for this job request")
	ErrRatingAlreadyExists = New(ErrCodeInvalidState, "rating already exists for this job request")
	ErrAlertAlreadyExists  = New(ErrCodeConflict, "an identical search alert already exists")
)
