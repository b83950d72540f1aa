package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

// BodyLimit 请求体大小限制。
// 声明的 Content-Length 超限时直接返回 413；未声明长度的请求在读取时截断，
// 由 IsBodyTooLarge 在绑定阶段识别。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			BodyTooLarge(c)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// IsBodyTooLarge 判断绑定错误是否由请求体超限引起
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// BodyTooLarge 写入 413 响应
func BodyTooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
}
