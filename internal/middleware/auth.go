package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/together/pkg/response"
)

// CtxUserID 认证中间件写入的当前用户键
const CtxUserID = "uid"

// Auth 校验身份提供方签发的 Bearer token，取出 uid 作为操作主体
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			response.Unauthorized(c, "token without subject")
			c.Abort()
			return
		}
		c.Set(CtxUserID, sub)
		c.Next()
	}
}

// UserID 读取当前操作者
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
