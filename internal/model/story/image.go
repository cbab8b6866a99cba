package story

// ImageResult 场景插图结果
// 每个输入场景恰好对应一条结果；生成失败时 URL 为占位图
type ImageResult struct {
	ID          string  `json:"id"`          // 对应场景ID
	URL         string  `json:"url"`         // 图片地址（真实或占位）
	Description string  `json:"description"` // 场景叙述
	SceneTitle  string  `json:"sceneTitle"`  // 场景标题
	Order       float64 `json:"order"`       // 排序号
}

// Download 下载代理抓取到的图片
type Download struct {
	Data        []byte
	ContentType string
	Extension   string // png / webp / gif / jpg
}
