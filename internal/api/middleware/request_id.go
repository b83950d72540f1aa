package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/YuWang03/kunyu-project-sub003/pkg/logger"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	requestIDMaxLen = 64
)

// RequestID 请求追踪 ID 中间件。
// 沿用网关传入的 X-Request-ID（仅接受可见 ASCII 且不超过 64 字节），否则生成 UUID。
// 同一 ID 会出现在日志与送往 BPM 的请求头中。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}

// GetRequestID 取当前请求的追踪 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}
