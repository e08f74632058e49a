package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oip/checkout/internal/app/pkg/ginx"
	"oip/checkout/internal/app/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic 并记录 handler 通过 c.Error 上报的错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(c.Request.Context(), "panic recovered",
					"path", c.Request.URL.Path,
					"panic", r,
				)
				if !c.Writer.Written() {
					ginx.InternalError(c, "internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()

		for _, err := range c.Errors {
			log.ErrorContext(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"error", err.Err,
			)
		}

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.Error(c, http.StatusInternalServerError, "internal server error")
		}
	}
}
