package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	"github.com/YuWang03/kunyu-project-sub003/pkg/redis"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

// 上下文键
const (
	CtxUserID   = "user_id"
	CtxRoles    = "roles"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 Access Token，经 JWKS 校验签名后注入身份。
// rdb 为 nil 或 Redis 出错时跳过黑名单检查（降级放行）
func JWTAuth(verifier *jwt.Verifier, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			if revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		// 将身份注入上下文
		c.Set(CtxUserID, claims.Username())
		c.Set(CtxRoles, claims.RealmAccess.Roles)
		c.Set(CtxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRoles)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRoles, _ := v.([]string)
		for _, have := range userRoles {
			for _, want := range allowedRoles {
				if have == want {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
