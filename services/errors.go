package services

import "net/http"

// ServiceError is a typed error with an HTTP status code. The status code
// doubles as the error category: 400 bad input, 403 role/ownership
// violation, 404 missing resource, 409 state conflict, 502 upstream
// (retryable) failure.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

func validationError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: message}
}

func authorizationError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: message}
}

func notFoundError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: message}
}

func conflictError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Message: message}
}

func externalServiceError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadGateway, Message: message}
}

func internalError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: message}
}
