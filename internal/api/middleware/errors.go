package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/internal/core/catalog"
	"github.com/metacatalog/catalog/internal/logger"
)

var statusByCode = map[string]int{
	catalog.ENotFound:     http.StatusNotFound,
	catalog.EInvalid:      http.StatusBadRequest,
	catalog.EConflict:     http.StatusConflict,
	catalog.EForbidden:    http.StatusForbidden,
	catalog.EUnauthorized: http.StatusUnauthorized,
	catalog.EInternal:     http.StatusInternalServerError,
}

// StatusCode maps a catalog error code to its HTTP status.
func StatusCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders the last error attached with c.Error as
// {"code","message","detail"}. hideDetail drops detail and replaces
// internal messages for production.
func ErrorHandler(base *zap.Logger, hideDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		code := catalog.ErrorCode(err)
		status := StatusCode(code)

		log := logger.FromContext(c.Request.Context(), base)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Warn("request rejected", fields...)
		}

		body := gin.H{"code": code, "message": catalog.ErrorMessage(err)}
		if status >= http.StatusInternalServerError && hideDetail {
			body["message"] = "internal server error"
		}
		if detail := catalog.ErrorDetail(err); detail != nil && !hideDetail {
			body["detail"] = detail
		}

		c.AbortWithStatusJSON(status, body)
	}
}
