// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnavailable  = errors.New("data not loaded")
	ErrUpstream     = errors.New("billing api request failed")
	ErrUpstreamData = errors.New("billing api returned malformed data")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnavailable):
		Retryable(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
	case errors.Is(err, ErrUpstreamData):
		Retryable(w, http.StatusBadGateway, "Malformed Upstream Data", err.Error())
	case errors.Is(err, ErrUpstream):
		Retryable(w, http.StatusBadGateway, "Upstream Error", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
