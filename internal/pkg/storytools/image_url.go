package storytools

import "strings"

// URLStrategy 从图片生成响应中提取候选地址
// 每个策略是纯函数，只在找到合法 http(s) 地址时返回 true
type URLStrategy struct {
	Name    string
	Extract func(payload map[string]any) (string, bool)
}

// DefaultURLStrategies 按优先级排列的提取策略
// 上游图片端点的响应结构没有文档，逐个字段尝试
var DefaultURLStrategies = []URLStrategy{
	{Name: "image_url", Extract: fieldURL("image_url")},
	{Name: "url", Extract: fieldURL("url")},
	{Name: "choices.message.content", Extract: choiceContentURL},
	{Name: "data.url", Extract: dataURL},
	{Name: "output", Extract: outputURL},
}

// ExtractImageURL 依次应用 DefaultURLStrategies，返回第一个合法地址及命中的策略名
func ExtractImageURL(payload map[string]any) (url string, strategy string, ok bool) {
	for _, s := range DefaultURLStrategies {
		if u, ok := s.Extract(payload); ok {
			return u, s.Name, true
		}
	}
	return "", "", false
}

// IsHTTPURL 非空且以 http:// 或 https:// 开头
func IsHTTPURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func asURL(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !IsHTTPURL(s) {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func fieldURL(key string) func(map[string]any) (string, bool) {
	return func(payload map[string]any) (string, bool) {
		return asURL(payload[key])
	}
}

func firstObject(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	obj, ok := list[0].(map[string]any)
	return obj, ok
}

func choiceContentURL(payload map[string]any) (string, bool) {
	choice, ok := firstObject(payload["choices"])
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}
	return asURL(message["content"])
}

func dataURL(payload map[string]any) (string, bool) {
	item, ok := firstObject(payload["data"])
	if !ok {
		return "", false
	}
	return asURL(item["url"])
}

// outputURL output 可能是字符串，也可能是字符串数组（取第一个）
func outputURL(payload map[string]any) (string, bool) {
	switch v := payload["output"].(type) {
	case string:
		return asURL(v)
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return asURL(v[0])
	default:
		return "", false
	}
}
