package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when no valid session token was presented.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrForbidden is returned when the caller lacks the role or ownership required.
	ErrForbidden = errors.New("forbidden access")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrMalformedIdentifier is returned when a client-supplied id is not a valid object id.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrInvalidAmount is returned when a price or amount is negative or unparsable.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSettlementInProgress is returned when an identical finalize request is still running.
	ErrSettlementInProgress = errors.New("settlement already in progress")
	// ErrUpstream is returned when the store or the payment gateway fails.
	ErrUpstream = errors.New("upstream failure")
)

// Upstream wraps a store or gateway error so it maps to ErrUpstream while
// keeping the cause for logs.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrMalformedIdentifier):
		return NewHTTPError(http.StatusBadRequest, ErrMalformedIdentifier.Error(), "MALFORMED_IDENTIFIER")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidAmount.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrSettlementInProgress):
		return NewHTTPError(http.StatusConflict, ErrSettlementInProgress.Error(), "SETTLEMENT_IN_PROGRESS")
	case errors.Is(err, ErrUpstream):
		return NewHTTPError(http.StatusBadGateway, ErrUpstream.Error(), "UPSTREAM_FAILURE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
