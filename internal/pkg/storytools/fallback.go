package storytools

import (
	"fmt"
	"strings"

	"storybook/internal/model/story"
)

const (
	fallbackWindow       = 50  // 每个兜底场景截取的词数
	adventureMinWords    = 100 // 超过该词数才生成中段场景
	mainScenePromptRunes = 200 // 短故事截取的字符数
	fallbackCharacter    = "Main Character"
)

// FallbackScenes 在模型分析不可用时，根据故事原文确定性地构造场景
//   - 少于 50 词：1 个场景，截取前 200 个字符
//   - 否则：开头（前 50 词）、结尾（后 50 词），超过 100 词时在中间插入以中点为中心的 50 词
//
// 词数按任意空白（空格、换行、连续空白）切分计算，连续空白不产生空词
// 对任意非空故事至少返回 1 个场景
func FallbackScenes(storyText string) []story.Scene {
	words := strings.Fields(storyText)
	n := len(words)

	if n < fallbackWindow {
		return []story.Scene{{
			ID:           "scene-1",
			Title:        "The Main Scene",
			Description:  "The main moment from your story",
			Characters:   []string{fallbackCharacter},
			Setting:      "Story Setting",
			VisualPrompt: fmt.Sprintf("Child-friendly illustration of: %s. Bright colors, cartoon style, suitable for children's book, cheerful and engaging atmosphere.", headRunes(storyText, mainScenePromptRunes)),
			Order:        1,
		}}
	}

	scenes := make([]story.Scene, 0, 3)
	scenes = append(scenes, story.Scene{
		Title:        "The Beginning",
		Description:  "How the story starts",
		Characters:   []string{fallbackCharacter},
		Setting:      "Opening Setting",
		VisualPrompt: fmt.Sprintf("Child-friendly illustration showing the beginning of this story: %s. Bright, colorful, cartoon-style illustration perfect for children aged 10-12.", strings.Join(words[:fallbackWindow], " ")),
	})

	if n > adventureMinWords {
		mid := n / 2
		half := fallbackWindow / 2
		scenes = append(scenes, story.Scene{
			Title:        "The Adventure",
			Description:  "The main adventure or conflict",
			Characters:   []string{fallbackCharacter},
			Setting:      "Adventure Setting",
			VisualPrompt: fmt.Sprintf("Child-friendly illustration of the main adventure: %s. Exciting, colorful, safe-for-children illustration with bright colors and engaging characters.", strings.Join(words[mid-half:mid+half], " ")),
		})
	}

	scenes = append(scenes, story.Scene{
		Title:        "The Ending",
		Description:  "How the story concludes",
		Characters:   []string{fallbackCharacter},
		Setting:      "Final Setting",
		VisualPrompt: fmt.Sprintf("Child-friendly illustration of the story conclusion: %s. Happy, bright, colorful illustration showing a positive ending, perfect for children's storytelling.", strings.Join(words[n-fallbackWindow:], " ")),
	})

	for i := range scenes {
		scenes[i].ID = fmt.Sprintf("scene-%d", i+1)
		scenes[i].Order = float64(i + 1)
	}
	return scenes
}

// headRunes 按字符截取前 limit 个，避免切断多字节字符
func headRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
