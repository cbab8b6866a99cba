package story

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"storybook/internal/ai"
	"storybook/internal/model/story"
	"storybook/internal/pkg/ctxutil"
	"storybook/internal/pkg/metrics"
	"storybook/internal/pkg/storytools"
)

// AnalyzeStory 将故事拆分为场景
// 1. 调用分析模型，要求返回 JSON 数组
// 2. 解析、校验、截断、排序
// 3. 任一步失败都退回 FallbackScenes，保证结果非空
func (s *storyService) AnalyzeStory(ctx context.Context, storyText string) (*story.Analysis, error) {
	if strings.TrimSpace(storyText) == "" {
		return nil, ErrEmptyStory
	}

	logger := log.With().Str("request_id", ctxutil.RequestID(ctx)).Logger()

	content, err := s.aiClient.Complete(ctx, s.analysisModel, []ai.Message{
		ai.SystemMessage(storytools.AnalysisSystemPrompt),
		ai.UserMessage(storytools.BuildAnalysisPrompt(storyText)),
	})
	if err != nil {
		return s.fallback(ctx, storyText, "analysis request failed: "+err.Error()), nil
	}

	scenes, err := storytools.ParseScenes(content)
	if err != nil {
		return s.fallback(ctx, storyText, err.Error()), nil
	}

	metrics.StoryAnalyses.WithLabelValues(metrics.ResultModel).Inc()
	logger.Info().Int("scene_count", len(scenes)).Msg("故事分析完成")
	return &story.Analysis{Scenes: scenes}, nil
}

func (s *storyService) fallback(ctx context.Context, storyText, reason string) *story.Analysis {
	scenes := storytools.FallbackScenes(storyText)
	metrics.StoryAnalyses.WithLabelValues(metrics.ResultFallback).Inc()
	log.Warn().
		Str("request_id", ctxutil.RequestID(ctx)).
		Str("reason", reason).
		Int("scene_count", len(scenes)).
		Msg("story analysis fell back to heuristic scenes")

	return &story.Analysis{
		Scenes:         scenes,
		UsedFallback:   true,
		FallbackReason: reason,
	}
}
