// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/deliveryheat/internal/geo"
	"github.com/tomtom215/deliveryheat/internal/heatmap"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidCoordinate  = "INVALID_COORDINATE"
	ErrCodeInvalidDateRange   = "INVALID_DATE_RANGE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// errorStatus maps a domain error to an HTTP status and error code.
func errorStatus(err error) (status int, code string) {
	switch {
	case errors.Is(err, heatmap.ErrSessionNotFound), errors.Is(err, heatmap.ErrViewClosed):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return http.StatusBadRequest, ErrCodeInvalidCoordinate
	case errors.Is(err, heatmap.ErrInvalidDateRange):
		return http.StatusBadRequest, ErrCodeInvalidDateRange
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
