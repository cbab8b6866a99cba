package id

import (
	"strings"

	"github.com/google/uuid"
)

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// RequestID 返回可用的请求ID
// 调用方传入的 candidate 是合法 UUID 时沿用（统一为小写），否则生成新的
func RequestID(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if u, err := uuid.Parse(candidate); err == nil && candidate != "" {
		return u.String()
	}
	return New()
}
