package ctxutil

import "context"

// requestIDKeyType 使用私有类型避免与其他 context key 冲突
type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// WithRequestID 将 requestID 注入到 context 中
// 说明：由 RequestID 中间件调用，下游 service / ai 客户端通过 RequestID 取出用于日志关联
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID 从 context 中解析 requestID，不存在时返回空字符串
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
