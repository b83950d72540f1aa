package logger

import "context"

type requestIDKey struct{}

// WithRequestID 将请求追踪 ID 放入 context，供下游客户端透传
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID 从 context 取追踪 ID；不存在时返回空字符串
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}
