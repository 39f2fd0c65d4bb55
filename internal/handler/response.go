package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"payments/internal/money"
	"payments/internal/provider"
	"payments/internal/repository"
	"payments/internal/service"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status     bool   `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal server error"
	}
	c.JSON(code, Response{Status: false, StatusCode: code, Message: message})
}

// respondBadRequest sends a 400 with a fixed message.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Status: false, StatusCode: http.StatusBadRequest, Message: message})
}

// respondJSON sends a successful envelope with the given status code.
func respondJSON(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: true, StatusCode: code, Message: message, Data: data})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrNoPriorPayment),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrInvalidParty),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDuplicatePaymentID),
		errors.Is(err, money.ErrInvalidAmount):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrLockContention),
		errors.Is(err, service.ErrTerminalStatus):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrLockUnavailable),
		errors.Is(err, provider.ErrProviderUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
