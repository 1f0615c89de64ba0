package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrUserNotFound    = &AppError{http.StatusUnprocessableEntity, "USER_NOT_FOUND", "User not found"}
	ErrVersionConflict = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Concurrent modification, retry"}
	ErrAccountNumberExhausted = &AppError{http.StatusConflict, "ACCOUNT_NUMBER_EXHAUSTED", "Could not allocate a unique account number"}
)
