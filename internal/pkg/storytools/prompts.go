package storytools

import (
	"fmt"
	"strings"

	"storybook/internal/model/story"
)

// AnalysisSystemPrompt 故事分析的 system 消息
const AnalysisSystemPrompt = "You are an expert children's story analyst. Always respond with valid JSON only."

const analysisPromptTemplate = `You are an expert in children's literature and storytelling for ages 10-12. Analyze the following story and identify 2-5 key scenes that would make the best visual illustrations for storytelling.

Story to analyze:
"""
%s
"""

For each scene, provide:
1. A clear title for the scene
2. A detailed description of what happens
3. Main characters involved
4. The setting/location
5. A detailed visual prompt for image generation (optimized for child-friendly illustrations)

Requirements:
- Select 2-5 most important and visually interesting scenes
- Focus on scenes that advance the plot or show character development
- Ensure all content is appropriate for children ages 10-12
- Visual prompts should describe bright, colorful, engaging illustrations
- Avoid scary, violent, or inappropriate content
- Include diverse characters when possible

Respond with a JSON array of scenes in this exact format:
[
  {
    "id": "scene-1",
    "title": "Scene Title",
    "description": "What happens in this scene",
    "characters": ["Character 1", "Character 2"],
    "setting": "Location description",
    "visualPrompt": "Detailed image generation prompt focusing on child-friendly illustration style, bright colors, and engaging characters",
    "order": 1
  }
]

Only respond with valid JSON, no additional text.`

const illustrationPromptTemplate = `Create a beautiful, child-friendly illustration for a children's story book:

Scene: %s
Story Context: %s
Characters: %s
Setting: %s

Style Requirements:
- Bright, vibrant colors that appeal to children aged 10-12
- Cartoon or illustration style similar to popular children's books
- Safe, positive, and engaging visual content
- Clear, friendly character designs with expressive faces
- Detailed background that supports the story
- High quality, professional children's book illustration style

Specific Visual Elements: %s

Avoid: scary content, dark themes, realistic violence, inappropriate material

Focus on: joy, wonder, adventure, friendship, positive emotions, magical elements, colorful environments`

// BuildAnalysisPrompt 构建故事分析 prompt，故事原文原样嵌入
func BuildAnalysisPrompt(storyText string) string {
	return fmt.Sprintf(analysisPromptTemplate, storyText)
}

// BuildIllustrationPrompt 构建单个场景的儿童安全插图 prompt
func BuildIllustrationPrompt(scene *story.Scene) string {
	return fmt.Sprintf(illustrationPromptTemplate,
		scene.Title,
		scene.Description,
		strings.Join(scene.Characters, ", "),
		scene.Setting,
		scene.VisualPrompt,
	)
}
