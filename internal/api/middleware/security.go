package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全响应头。
// 服务只输出 JSON 与 Excel，不承载页面；人事资料一律禁止缓存。
// hsts 为 true 时（部署在 HTTPS 之后）附加 Strict-Transport-Security。
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		if hsts {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
