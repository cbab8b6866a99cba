package storytools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"storybook/internal/model/story"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	Convey("BuildAnalysisPrompt 原样嵌入故事并要求 JSON 数组", t, func() {
		prompt := BuildAnalysisPrompt("Once upon a time, a \"brave\" fox.")
		So(prompt, ShouldContainSubstring, `"""`+"\nOnce upon a time, a \"brave\" fox.\n"+`"""`)
		So(prompt, ShouldContainSubstring, "2-5 key scenes")
		So(prompt, ShouldContainSubstring, `"visualPrompt"`)
		So(prompt, ShouldEndWith, "Only respond with valid JSON, no additional text.")
	})
}

func TestBuildIllustrationPrompt(t *testing.T) {
	Convey("BuildIllustrationPrompt 嵌入场景字段与儿童安全约束", t, func() {
		scene := &story.Scene{
			Title:        "The Door",
			Description:  "Fox finds a door",
			Characters:   []string{"Fox", "Owl"},
			Setting:      "Hill",
			VisualPrompt: "a glowing door",
		}
		prompt := BuildIllustrationPrompt(scene)

		So(prompt, ShouldStartWith, "Create a beautiful, child-friendly illustration")
		So(prompt, ShouldContainSubstring, "Scene: The Door")
		So(prompt, ShouldContainSubstring, "Story Context: Fox finds a door")
		So(prompt, ShouldContainSubstring, "Characters: Fox, Owl")
		So(prompt, ShouldContainSubstring, "Setting: Hill")
		So(prompt, ShouldContainSubstring, "Specific Visual Elements: a glowing door")
		So(prompt, ShouldContainSubstring, "Avoid: scary content")

		Convey("没有角色时不会 panic", func() {
			scene.Characters = nil
			So(BuildIllustrationPrompt(scene), ShouldContainSubstring, "Characters: \n")
		})
	})
}
