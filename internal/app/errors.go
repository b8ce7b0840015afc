package app

import (
	"fmt"
	"net/http"
)

// DomainError is an error with a fixed HTTP status and machine-readable code.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func validationError(message string) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, nil)
}

func playerNotFound(id string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "Player not found", map[string]any{"id": id})
}

var errExportUnavailable = domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export storage not configured", nil)
