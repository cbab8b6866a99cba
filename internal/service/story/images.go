package story

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"storybook/internal/ai"
	"storybook/internal/model/story"
	"storybook/internal/pkg/ctxutil"
	"storybook/internal/pkg/metrics"
	"storybook/internal/pkg/storytools"
)

// GenerateImages 为每个场景并发生成插图
// 每个场景一个 goroutine，写入各自的下标，goroutine 从不返回错误，单个失败不影响其他场景
func (s *storyService) GenerateImages(ctx context.Context, scenes []story.Scene) ([]story.ImageResult, error) {
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}

	results := make([]story.ImageResult, len(scenes))
	placeholders := make([]bool, len(scenes))

	var eg errgroup.Group
	for i := range scenes {
		i := i
		eg.Go(func() error {
			results[i], placeholders[i] = s.generateImage(ctx, &scenes[i], i)
			return nil
		})
	}
	_ = eg.Wait()

	placeholderCount := lo.Count(placeholders, true)
	metrics.SceneImages.WithLabelValues(metrics.ResultPlaceholder).Add(float64(placeholderCount))
	metrics.SceneImages.WithLabelValues(metrics.ResultGenerated).Add(float64(len(results) - placeholderCount))

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Order < results[j].Order
	})

	log.Info().
		Str("request_id", ctxutil.RequestID(ctx)).
		Int("total", len(results)).
		Int("placeholder_count", placeholderCount).
		Msg("场景插图生成完成")

	return results, nil
}

// generateImage 生成单个场景的插图，失败时返回占位图
// 第二个返回值表示是否使用了占位图
func (s *storyService) generateImage(ctx context.Context, scene *story.Scene, index int) (story.ImageResult, bool) {
	result := story.ImageResult{
		ID:          scene.ID,
		URL:         s.placeholderURL,
		Description: scene.Description,
		SceneTitle:  scene.Title,
		Order:       scene.Order,
	}
	if result.Order == 0 {
		result.Order = float64(index + 1)
	}

	logger := log.With().
		Str("request_id", ctxutil.RequestID(ctx)).
		Str("scene_id", scene.ID).
		Float64("order", result.Order).
		Logger()

	payload, err := s.aiClient.CompleteRaw(ctx, s.imageModel, []ai.Message{
		ai.UserMessage(storytools.BuildIllustrationPrompt(scene)),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("场景插图生成失败，使用占位图")
		return result, true
	}

	url, strategy, ok := storytools.ExtractImageURL(payload)
	if !ok {
		logger.Warn().
			Strs("response_keys", lo.Keys(payload)).
			Msg("响应中没有合法的图片地址，使用占位图")
		return result, true
	}

	logger.Info().Str("strategy", strategy).Str("url", url).Msg("场景插图生成成功")
	result.URL = url
	return result, false
}
