package storytools

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"storybook/internal/model/story"
)

// MaxScenes 单次分析最多保留的场景数
const MaxScenes = 5

var (
	// ErrEmptyResponse 模型返回空内容
	ErrEmptyResponse = errors.New("empty analysis response")
	// ErrNotArray 模型返回的不是 JSON 数组
	ErrNotArray = errors.New("analysis response is not a JSON array")
	// ErrNoValidScenes 数组中没有任何有效场景
	ErrNoValidScenes = errors.New("analysis response contains no valid scene")
)

var markdownFence = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n(.*?)\\n?\\s*```\\s*$")

// CleanJSONContent 清理 LLM 返回的 JSON 内容
// 移除首尾空白与 markdown 代码块标记
func CleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if matches := markdownFence.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}
	return strings.TrimSpace(content)
}

// ParseScenes 解析模型返回的场景 JSON
// 条目按宽松规则取值：标量 id/title 等转为字符串，order 接受任意非 0 的有限数字（含数字字符串），
// characters 为单个字符串时视为一个角色；取值后缺少必填字段的条目被丢弃
// 结果最多 MaxScenes 条并按 order 稳定排序
func ParseScenes(raw string) ([]story.Scene, error) {
	content := CleanJSONContent(raw)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.UseNumber()
	var items []any
	if err := decoder.Decode(&items); err != nil || items == nil {
		return nil, ErrNotArray
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, ErrNotArray
	}

	scenes := make([]story.Scene, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		scenes = append(scenes, sceneFromFields(fields))
	}

	scenes = FilterScenes(scenes)
	if len(scenes) == 0 {
		return nil, ErrNoValidScenes
	}
	return scenes, nil
}

func sceneFromFields(fields map[string]any) story.Scene {
	return story.Scene{
		ID:           scalarString(fields["id"]),
		Title:        scalarString(fields["title"]),
		Description:  scalarString(fields["description"]),
		Characters:   characterList(fields["characters"]),
		Setting:      scalarString(fields["setting"]),
		VisualPrompt: scalarString(fields["visualPrompt"]),
		Order:        orderValue(fields["order"]),
	}
}

// scalarString 字符串原样返回，数字与 true 转为文本；null、false、对象、数组视为缺失
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
	}
	return ""
}

// orderValue 非数字、NaN、无穷大均返回 0（无效）
func orderValue(v any) float64 {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// characterList 总是返回非 nil 切片
func characterList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if name := scalarString(item); name != "" {
				out = append(out, name)
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) != "" {
			return []string{val}
		}
	}
	return []string{}
}

// FilterScenes 丢弃无效场景，截断到 MaxScenes 条，再按 order 稳定排序
// 对已经有效的列表重复调用结果不变
func FilterScenes(scenes []story.Scene) []story.Scene {
	valid := lo.Filter(scenes, func(s story.Scene, _ int) bool {
		return s.IsValid()
	})
	if len(valid) > MaxScenes {
		valid = valid[:MaxScenes]
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Order < valid[j].Order
	})
	return valid
}
