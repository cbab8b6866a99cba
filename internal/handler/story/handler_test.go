package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"storybook/internal/config"
	"storybook/internal/model/story"
	storyservice "storybook/internal/service/story"
)

// fakeStoryService 可编程的故事服务
type fakeStoryService struct {
	analyze  func(ctx context.Context, storyText string) (*story.Analysis, error)
	generate func(ctx context.Context, scenes []story.Scene) ([]story.ImageResult, error)
	download func(ctx context.Context, imageURL string) (*story.Download, error)

	lastStory    string
	lastScenes   []story.Scene
	hadDeadline  bool
	analyzeCalls int
}

func (f *fakeStoryService) AnalyzeStory(ctx context.Context, storyText string) (*story.Analysis, error) {
	f.analyzeCalls++
	f.lastStory = storyText
	_, f.hadDeadline = ctx.Deadline()
	return f.analyze(ctx, storyText)
}

func (f *fakeStoryService) GenerateImages(ctx context.Context, scenes []story.Scene) ([]story.ImageResult, error) {
	f.lastScenes = scenes
	_, f.hadDeadline = ctx.Deadline()
	return f.generate(ctx, scenes)
}

func (f *fakeStoryService) DownloadImage(ctx context.Context, imageURL string) (*story.Download, error) {
	return f.download(ctx, imageURL)
}

func newTestRouter(svc storyservice.StoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Illustration: config.IllustrationConfig{AnalyzeTimeout: time.Minute, GenerateTimeout: time.Minute},
		Download:     config.DownloadConfig{Timeout: 30 * time.Second},
	}
	h := NewHandler(svc, cfg)

	r := gin.New()
	r.POST("/api/v1/stories/analyze", h.AnalyzeStory)
	r.POST("/api/v1/stories/images", h.GenerateImages)
	r.POST("/api/v1/images/download", h.DownloadImage)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func TestAnalyzeStoryHandler(t *testing.T) {
	Convey("POST /api/v1/stories/analyze", t, func() {
		svc := &fakeStoryService{
			analyze: func(ctx context.Context, storyText string) (*story.Analysis, error) {
				return &story.Analysis{
					Scenes: []story.Scene{{ID: "scene-1", Title: "A", Description: "a", Characters: []string{}, VisualPrompt: "a", Order: 1}},
				}, nil
			},
		}
		r := newTestRouter(svc)

		Convey("成功返回场景列表", func() {
			w := postJSON(r, "/api/v1/stories/analyze", `{"story":"  A fox finds a key in the woods.  "}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp AnalyzeStoryResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, 0)
			So(resp.Count, ShouldEqual, 1)
			So(resp.UsedFallback, ShouldBeFalse)
			So(resp.Scenes[0].ID, ShouldEqual, "scene-1")
			So(svc.lastStory, ShouldEqual, "A fox finds a key in the woods.")
			So(svc.hadDeadline, ShouldBeTrue)
		})

		Convey("兜底结果标记 usedFallback", func() {
			svc.analyze = func(ctx context.Context, storyText string) (*story.Analysis, error) {
				return &story.Analysis{Scenes: []story.Scene{{ID: "scene-1"}}, UsedFallback: true}, nil
			}
			w := postJSON(r, "/api/v1/stories/analyze", `{"story":"A fox finds a key in the woods."}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"usedFallback":true`)
		})

		Convey("故事过短返回 40001 且不调用服务", func() {
			w := postJSON(r, "/api/v1/stories/analyze", `{"story":"   short    "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidStory)
			So(svc.analyzeCalls, ShouldEqual, 0)
		})

		Convey("恰好 10 个字符可以通过", func() {
			w := postJSON(r, "/api/v1/stories/analyze", `{"story":" 0123456789 "}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("缺少 story 字段返回 40001", func() {
			w := postJSON(r, "/api/v1/stories/analyze", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidStory)
		})

		Convey("请求体不是 JSON 返回 40001", func() {
			w := postJSON(r, "/api/v1/stories/analyze", `story`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidStory)
		})

		Convey("服务内部错误返回 500", func() {
			svc.analyze = func(ctx context.Context, storyText string) (*story.Analysis, error) {
				return nil, errors.New("boom")
			}
			w := postJSON(r, "/api/v1/stories/analyze", `{"story":"A fox finds a key in the woods."}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			resp := decodeError(w)
			So(resp.Code, ShouldEqual, CodeAnalyzeFailed)
			So(resp.Detail, ShouldEqual, "boom")
		})
	})
}

func TestGenerateImagesHandler(t *testing.T) {
	Convey("POST /api/v1/stories/images", t, func() {
		svc := &fakeStoryService{
			generate: func(ctx context.Context, scenes []story.Scene) ([]story.ImageResult, error) {
				out := make([]story.ImageResult, len(scenes))
				for i, s := range scenes {
					out[i] = story.ImageResult{ID: s.ID, URL: "https://img/" + s.ID, SceneTitle: s.Title, Order: s.Order}
				}
				return out, nil
			},
		}
		r := newTestRouter(svc)

		Convey("成功返回插图列表", func() {
			w := postJSON(r, "/api/v1/stories/images", `{"scenes":[{"id":"scene-1","title":"A","description":"a","characters":["Fox"],"setting":"s","visualPrompt":"v","order":1}]}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp GenerateImagesResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Count, ShouldEqual, 1)
			So(resp.Images[0].URL, ShouldEqual, "https://img/scene-1")
			So(resp.Images[0].SceneTitle, ShouldEqual, "A")
			So(svc.lastScenes[0].Characters, ShouldResemble, []string{"Fox"})
			So(svc.hadDeadline, ShouldBeTrue)
		})

		Convey("scenes 为空数组返回 40002", func() {
			w := postJSON(r, "/api/v1/stories/images", `{"scenes":[]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidScenes)
		})

		Convey("缺少 scenes 返回 40002", func() {
			w := postJSON(r, "/api/v1/stories/images", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidScenes)
		})

		Convey("scenes 不是数组返回 40002", func() {
			w := postJSON(r, "/api/v1/stories/images", `{"scenes":"scene-1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidScenes)
		})

		Convey("服务内部错误返回 500", func() {
			svc.generate = func(ctx context.Context, scenes []story.Scene) ([]story.ImageResult, error) {
				return nil, errors.New("boom")
			}
			w := postJSON(r, "/api/v1/stories/images", `{"scenes":[{"id":"scene-1"}]}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w).Code, ShouldEqual, CodeGenerateFailed)
		})
	})
}

func TestDownloadImageHandler(t *testing.T) {
	Convey("POST /api/v1/images/download", t, func() {
		svc := &fakeStoryService{
			download: func(ctx context.Context, imageURL string) (*story.Download, error) {
				return &story.Download{Data: []byte("PNGDATA"), ContentType: "image/png", Extension: "png"}, nil
			},
		}
		r := newTestRouter(svc)

		Convey("成功时以附件形式返回图片", func() {
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"https://img/a.png","filename":"my-scene"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "PNGDATA")
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(w.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="my-scene.png"`)
			So(w.Header().Get("Content-Length"), ShouldEqual, "7")
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-cache")
		})

		Convey("未指定文件名时使用默认文件名", func() {
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"https://img/a.png"}`)
			So(w.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="story-image.png"`)
		})

		Convey("缺少 imageUrl 返回 40003", func() {
			w := postJSON(r, "/api/v1/images/download", `{"filename":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidImageURL)
		})

		Convey("非法地址返回 40003", func() {
			svc.download = func(ctx context.Context, imageURL string) (*story.Download, error) {
				return nil, storyservice.ErrInvalidImageURL
			}
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"ftp://img/a.png"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeInvalidImageURL)
		})

		Convey("空图片返回 40004", func() {
			svc.download = func(ctx context.Context, imageURL string) (*story.Download, error) {
				return nil, storyservice.ErrEmptyImage
			}
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"https://img/a.png"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, CodeEmptyImage)
		})

		Convey("源站状态码原样透传", func() {
			svc.download = func(ctx context.Context, imageURL string) (*story.Download, error) {
				return nil, &storyservice.UpstreamStatusError{StatusCode: http.StatusForbidden}
			}
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"https://img/a.png"}`)
			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(decodeError(w).Code, ShouldEqual, CodeUpstreamStatus)
		})

		Convey("图片超过大小上限返回 502", func() {
			svc.download = func(ctx context.Context, imageURL string) (*story.Download, error) {
				return nil, storyservice.ErrImageTooLarge
			}
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"https://img/a.png"}`)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(decodeError(w).Code, ShouldEqual, CodeImageTooLarge)
		})

		Convey("其他错误返回 500", func() {
			svc.download = func(ctx context.Context, imageURL string) (*story.Download, error) {
				return nil, errors.New("dial tcp: connection refused")
			}
			w := postJSON(r, "/api/v1/images/download", `{"imageUrl":"https://img/a.png"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w).Code, ShouldEqual, CodeDownloadFailed)
		})
	})
}

func TestSanitizeFilename(t *testing.T) {
	Convey("sanitizeFilename 清理下载文件名", t, func() {
		So(sanitizeFilename(""), ShouldEqual, DefaultDownloadFilename)
		So(sanitizeFilename("  "), ShouldEqual, DefaultDownloadFilename)
		So(sanitizeFilename("scene-1"), ShouldEqual, "scene-1")
		So(sanitizeFilename(`my "best" scene`), ShouldEqual, "my-best-scene")
		So(sanitizeFilename("../../etc/passwd"), ShouldEqual, "etc-passwd")
	})
}

func TestUpstreamStatus(t *testing.T) {
	Convey("upstreamStatus 只透传 4xx/5xx", t, func() {
		So(upstreamStatus(404), ShouldEqual, 404)
		So(upstreamStatus(503), ShouldEqual, 503)
		So(upstreamStatus(304), ShouldEqual, http.StatusBadGateway)
	})
}
