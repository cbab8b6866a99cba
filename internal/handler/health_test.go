package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"storybook/internal/config"
)

func TestHealthHandler(t *testing.T) {
	Convey("HealthHandler", t, func() {
		gin.SetMode(gin.TestMode)
		h := NewHealthHandler(&config.AIConfig{AnalysisModel: "text-model", ImageModel: "image-model"})
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)

		Convey("health 返回 ok", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{"status":"ok"}`)
		})

		Convey("ready 报告模型配置且不泄露密钥", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["status"], ShouldEqual, "ready")
			So(body["analysis_model"], ShouldEqual, "text-model")
			So(body["image_model"], ShouldEqual, "image-model")
			So(body["api_key_set"], ShouldEqual, false)
		})
	})
}
