package services

import "net/http"

// Error codes shared by services and controllers
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodePrecondition = "PRECONDITION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeGateway      = "GATEWAY_ERROR"
	CodeDatabase     = "DATABASE_ERROR"
)

// ServiceError is the typed error every service operation returns on failure.
// Status drives the HTTP response; FunctionName identifies the failing
// operation in error-log records.
type ServiceError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Status       int    `json:"-"`
	FunctionName string `json:"-"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// In identifies the failing operation for the error sink
func (e *ServiceError) In(functionName string) *ServiceError {
	e.FunctionName = functionName
	return e
}

// ErrValidation reports bad or missing input
func ErrValidation(message string) *ServiceError {
	return &ServiceError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

// ErrUnauthorized reports a failed credential check
func ErrUnauthorized(message string) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

// ErrForbidden reports an actor operating on a resource it does not own
func ErrForbidden(message string) *ServiceError {
	return &ServiceError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// ErrPrecondition reports a transition attempted from the wrong state
func ErrPrecondition(message string) *ServiceError {
	return &ServiceError{Code: CodePrecondition, Message: message, Status: http.StatusConflict}
}

// ErrNotFound reports a referenced id that does not resolve
func ErrNotFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

// ErrGateway wraps a payment gateway failure, passing its message through
func ErrGateway(err error) *ServiceError {
	return &ServiceError{Code: CodeGateway, Message: err.Error(), Status: http.StatusBadGateway}
}

// ErrDatabase wraps an underlying store failure
func ErrDatabase(err error) *ServiceError {
	return &ServiceError{Code: CodeDatabase, Message: err.Error(), Status: http.StatusInternalServerError}
}
