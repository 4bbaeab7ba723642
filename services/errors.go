package services

import "net/http"

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func badRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func unauthorized(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusUnauthorized, Message: msg}
}

func forbidden(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: msg}
}

func notFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func internal(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}
