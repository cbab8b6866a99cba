package http

// ErrorResponse 错误响应（所有API共用）
// Code 为业务错误码：4xxxx 表示请求问题，5xxxx 表示服务内部问题
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Message string `json:"message"`          // 面向用户的错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
