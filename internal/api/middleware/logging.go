package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/metacatalog/catalog/internal/logger"
)

// RequestLogger attaches a request-scoped logger to the request context and
// logs one line per completed request.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		log := base.With(
			zap.String("client_ip", clientIP(c)),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		)
		c.Request = c.Request.WithContext(logger.NewContextWithLogger(c.Request.Context(), log))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID, ok := GetUserID(c); ok {
			fields = append(fields, zap.Stringer("user_id", userID))
		}
		log.Info("request", fields...)
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip == "" {
		ip = c.GetHeader("X-Real-IP")
	}
	if ip == "" {
		ip = c.ClientIP()
	}
	if idx := strings.Index(ip, ","); idx != -1 {
		ip = strings.TrimSpace(ip[:idx])
	}
	return ip
}
