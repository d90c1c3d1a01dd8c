package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pnldomain "github.com/railzwaylabs/sitepnl/internal/pnl/domain"
	"github.com/railzwaylabs/sitepnl/internal/ratelimit"
)

const (
	errorTypeInvalidRequest = "invalid_request"
	errorTypeRateLimited    = "rate_limited"
	errorTypeInternal       = "internal_error"
)

type apiError struct {
	status  int
	errType string
	message string
}

func (e *apiError) Error() string {
	return e.message
}

type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func invalidRequestError() error {
	return &apiError{
		status:  http.StatusBadRequest,
		errType: errorTypeInvalidRequest,
		message: "invalid request body",
	}
}

// AbortWithError maps an error to its HTTP response. Anything not known to
// be caused by the caller is a 500 with a generic message.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, pnldomain.ErrSiteIDsRequired):
		apiErr = &apiError{status: http.StatusBadRequest, errType: errorTypeInvalidRequest, message: "siteIds is required"}
	case errors.Is(err, pnldomain.ErrInvalidYear):
		apiErr = &apiError{status: http.StatusBadRequest, errType: errorTypeInvalidRequest, message: "year is invalid"}
	case errors.Is(err, ratelimit.ErrRateLimited):
		apiErr = &apiError{status: http.StatusTooManyRequests, errType: errorTypeRateLimited, message: "too many requests"}
	default:
		apiErr = &apiError{status: http.StatusInternalServerError, errType: errorTypeInternal, message: "internal server error"}
	}

	c.AbortWithStatusJSON(apiErr.status, ErrorResponse{
		Error: ErrorBody{Type: apiErr.errType, Message: apiErr.message},
	})
}
