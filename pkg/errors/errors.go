package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized           = NewError("AUTHENTICATION_FAILURE", "signature verification failed", http.StatusUnauthorized)
	ErrMalformedPayload       = NewError("MALFORMED_PAYLOAD", "payload could not be parsed", http.StatusBadRequest)
	ErrConfigMissing          = NewError("CONFIGURATION_MISSING", "required configuration is missing", http.StatusInternalServerError)
	ErrDestinationUnreachable = NewError("DESTINATION_UNREACHABLE", "destination workspace could not be reached", http.StatusBadGateway)
	ErrWriteRejected          = NewError("WRITE_REJECTED", "destination rejected the record", http.StatusUnprocessableEntity)
	ErrNotFound               = NewError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrValidation             = NewError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrConflict               = NewError("CONFLICT", "resource conflict", http.StatusConflict)
	ErrInternal               = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// clone returns a copy of the error with its own Details map, so
// derived errors never write into the shared sentinel's map.
func (e *Error) clone() *Error {
	err := *e
	err.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		err.Details[k] = v
	}
	return &err
}

func (e *Error) WithCause(cause error) *Error {
	err := e.clone()
	err.Cause = cause
	return err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := e.clone()
	err.Details[key] = value
	return err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func IsNotFound(err error) bool {
	return Is(err, ErrNotFound)
}

func IsWriteRejected(err error) bool {
	return Is(err, ErrWriteRejected)
}

func IsDestinationUnreachable(err error) bool {
	return Is(err, ErrDestinationUnreachable)
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		// If it's not our error type, wrap it
		appErr = ErrInternal.WithCause(err)
	}

	response := map[string]interface{}{
		"error":      appErr.Message,
		"error_code": appErr.Code,
	}

	if len(appErr.Details) > 0 {
		response["details"] = appErr.Details
	}

	return response
}
