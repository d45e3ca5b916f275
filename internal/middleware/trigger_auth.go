package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/together/pkg/response"
)

// TriggerAuth 触发器内部端点的口令校验：
// 配置里只存 bcrypt 哈希，请求头携带明文口令
func TriggerAuth(secretHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretHash == "" {
			response.Forbidden(c, "trigger endpoint disabled")
			c.Abort()
			return
		}
		secret := c.GetHeader("X-Trigger-Secret")
		if err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)); err != nil {
			response.Forbidden(c, "bad trigger secret")
			c.Abort()
			return
		}
		c.Next()
	}
}
