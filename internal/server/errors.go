package server

import (
	"errors"
	"net/http"

	billingdomain "github.com/fakturalabs/faktura/internal/billing/domain"
	tenantdomain "github.com/fakturalabs/faktura/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// APIError is the wire shape of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	return e.Code
}

var (
	ErrUnauthorized = &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required"}
	ErrForbidden    = &APIError{Status: http.StatusForbidden, Code: "forbidden", Message: "access denied"}
	ErrNotFound     = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrRateLimited  = &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
)

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body is invalid"}
}

// AbortWithError terminates the request with the status mapped from err.
// Domain sentinels map to 400/404; anything unrecognized is a 500 with an
// opaque body, the underlying error stays in the gin error list for the
// request logger.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	if isDomainValidationError(err) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": &APIError{
			Status:  http.StatusBadRequest,
			Code:    err.Error(),
			Message: "request failed validation",
		}})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, tenantdomain.ErrTenantNotFound) ||
		errors.Is(err, billingdomain.ErrBillNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": ErrNotFound})
		return
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "internal server error",
	}})
}

func isDomainValidationError(err error) bool {
	switch {
	case errors.Is(err, billingdomain.ErrInvalidName),
		errors.Is(err, billingdomain.ErrInvalidAmount),
		errors.Is(err, billingdomain.ErrInvalidCurrency),
		errors.Is(err, billingdomain.ErrInvalidDayDue),
		errors.Is(err, billingdomain.ErrInvalidInterval),
		errors.Is(err, billingdomain.ErrInvalidPeriod),
		errors.Is(err, billingdomain.ErrInvalidAccount),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidSlug):
		return true
	default:
		return false
	}
}
