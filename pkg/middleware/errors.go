package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error          string `json:"error"`
	Detail         string `json:"detail"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	RetryAfter     int    `json:"retry_after,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(t errors.ErrorType) int {
	switch t {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeBadRequest:
		return http.StatusBadRequest
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	case errors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrorTypeForbidden:
		return http.StatusForbidden
	case errors.ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var codes = map[errors.ErrorType]string{
	errors.ErrorTypeNotFound:     "not_found",
	errors.ErrorTypeBadRequest:   "bad_request",
	errors.ErrorTypeConflict:     "conflict",
	errors.ErrorTypeUnauthorized: "unauthorized",
	errors.ErrorTypeForbidden:    "forbidden",
	errors.ErrorTypeRateLimited:  "rate_limited",
	errors.ErrorTypeUpstream:     "upstream_failure",
}

// ErrorHandler renders the last error attached with c.Error. Errors outside
// the taxonomy become 500 with the cause logged, not returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.As(err)
		if !ok || appErr.Type == errors.ErrorTypeInternal {
			logger.FromContext(c.Request.Context()).Error("Unhandled error", logger.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:  "internal_error",
				Detail: "Internal server error",
			})
			return
		}

		resp := ErrorResponse{
			Error:  codes[appErr.Type],
			Detail: appErr.Message,
		}

		switch appErr.Type {
		case errors.ErrorTypeUnauthorized:
			c.Header("WWW-Authenticate", "Bearer")
		case errors.ErrorTypeRateLimited:
			if appErr.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
				resp.RetryAfter = appErr.RetryAfter
			}
		case errors.ErrorTypeUpstream:
			resp.UpstreamStatus = appErr.StatusCode
		}

		c.JSON(StatusFor(appErr.Type), resp)
	}
}
