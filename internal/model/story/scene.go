package story

import "strings"

// Scene 故事场景
// 由故事分析生成，每个场景对应一张插图；仅在单次请求内存在，不落库
type Scene struct {
	ID           string   `json:"id"`           // 场景ID，格式 scene-<n>，仅在单次分析结果内唯一
	Title        string   `json:"title"`        // 场景标题
	Description  string   `json:"description"`  // 场景叙述
	Characters   []string `json:"characters"`   // 出场角色（可为空）
	Setting      string   `json:"setting"`      // 场景地点/环境
	VisualPrompt string   `json:"visualPrompt"` // 画面提示词
	Order        float64  `json:"order"`        // 1 起的顺序号，模型可能给出小数
}

// IsValid 场景是否满足最小完整性要求
// id、title、description、visualPrompt 非空且 order 非 0
func (s *Scene) IsValid() bool {
	return strings.TrimSpace(s.ID) != "" &&
		strings.TrimSpace(s.Title) != "" &&
		strings.TrimSpace(s.Description) != "" &&
		strings.TrimSpace(s.VisualPrompt) != "" &&
		s.Order != 0
}

// Analysis 故事分析结果
type Analysis struct {
	Scenes         []Scene // 场景列表，1~5 个
	UsedFallback   bool    // 是否使用了启发式兜底场景
	FallbackReason string  // 兜底原因（仅 UsedFallback 为 true 时有值）
}
