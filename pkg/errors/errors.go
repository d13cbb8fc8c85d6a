package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeAuth                  = "AUTH_ERROR"
	CodeAuthorizationRequired = "AUTHORIZATION_REQUIRED"
	CodeSubmission            = "SUBMISSION_ERROR"
	CodeNetwork               = "NETWORK_ERROR"
	CodeBusy                  = "BUSY"
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeInvalidState          = "INVALID_STATE"
	CodeInternal              = "INTERNAL_ERROR"
)

const (
	DetailField  = "field"
	DetailReason = "reason"
	DetailDetail = "detail"
	DetailLogin  = "login_required"
)

const (
	FallbackNetworkDetail = "network error"
	FallbackLoginMessage  = "Login failed. Please check your credentials."
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

// Field returns the rejected form field of a validation error, if any.
func (e *AppError) Field() string {
	s, _ := e.Details[DetailField].(string)
	return s
}

// Reason returns the short machine-readable reason of a validation error.
func (e *AppError) Reason() string {
	s, _ := e.Details[DetailReason].(string)
	return s
}

// Detail returns the backend detail of a submission error.
func (e *AppError) Detail() string {
	s, _ := e.Details[DetailDetail].(string)
	return s
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// FieldValidation rejects one named form field.
func FieldValidation(field, message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{DetailField: field},
	}
}

// ReasonValidation rejects a whole form with a short reason.
func ReasonValidation(reason string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    reason,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{DetailReason: reason},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func Auth(message string) *AppError {
	if message == "" {
		message = FallbackLoginMessage
	}
	return &AppError{
		Code:       CodeAuth,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func AuthorizationRequired(action string) *AppError {
	return &AppError{
		Code:       CodeAuthorizationRequired,
		Message:    fmt.Sprintf("Please login to %s.", action),
		HTTPStatus: http.StatusUnauthorized,
		Details:    map[string]any{DetailLogin: true},
	}
}

func Submission(detail string, err error) *AppError {
	if detail == "" {
		detail = FallbackNetworkDetail
	}
	return &AppError{
		Code:       CodeSubmission,
		Message:    detail,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{DetailDetail: detail},
		Err:        err,
	}
}

// Network reports an unreachable or failing remote service. An empty
// message falls back to the generic network error text.
func Network(message string, err error) *AppError {
	if message == "" {
		message = FallbackNetworkDetail
	}
	return &AppError{
		Code:       CodeNetwork,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func Busy(activity string) *AppError {
	return &AppError{
		Code:       CodeBusy,
		Message:    fmt.Sprintf("%s…", activity),
		HTTPStatus: http.StatusConflict,
	}
}

func InvalidState(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidState,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsValidation(err error) bool { return HasCode(err, CodeValidation) }

func IsAuth(err error) bool { return HasCode(err, CodeAuth) }

func IsAuthorizationRequired(err error) bool { return HasCode(err, CodeAuthorizationRequired) }

func IsSubmission(err error) bool { return HasCode(err, CodeSubmission) }

func IsNetwork(err error) bool { return HasCode(err, CodeNetwork) }

func IsBusy(err error) bool { return HasCode(err, CodeBusy) }

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }
