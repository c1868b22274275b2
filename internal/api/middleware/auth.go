package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/allyhaasmessimer/liesel-blog/internal/service"
	"github.com/allyhaasmessimer/liesel-blog/pkg/jwtx"
	"github.com/allyhaasmessimer/liesel-blog/pkg/response"
)

const identityKey = "identity"

// Auth 从 cookie 提取令牌并校验，成功则把身份放入请求上下文。
// 任何失败一律 401 拒绝，校验错误绝不向上层扩散
func Auth(tokens *jwtx.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie("token")
		if err != nil || raw == "" {
			response.Unauthorized(c, "missing token")
			c.Abort()
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(identityKey, service.Identity{UserID: claims.UserID, Username: claims.Username})
		c.Next()
	}
}

// GetIdentity 读取 Auth 中间件写入的身份；只在受保护路由内调用
func GetIdentity(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return service.Identity{}, false
	}
	id, ok := v.(service.Identity)
	return id, ok
}
