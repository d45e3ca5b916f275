package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/together/pkg/logger"
	"github.com/d60-Lab/together/pkg/response"
)

// Recovery 捕获 panic：上报 sentry、记日志、返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				if hub := sentry.CurrentHub(); hub.Client() != nil {
					hub.Recover(r)
				}
				logger.Error("request panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("recover", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
					Code:    http.StatusInternalServerError,
					Message: err.Error(),
				})
			}
		}()
		c.Next()
	}
}
