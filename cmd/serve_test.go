package cmd

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestServeFlags(t *testing.T) {
	Convey("serve 命令的插图与下载参数", t, func() {
		flags := serveCmd.Flags()

		Convey("默认值与配置默认值一致", func() {
			So(flags.Lookup("analyze-timeout").DefValue, ShouldEqual, "1m0s")
			So(flags.Lookup("generate-timeout").DefValue, ShouldEqual, "1m0s")
			So(flags.Lookup("download-timeout").DefValue, ShouldEqual, "30s")
			So(flags.Lookup("download-max-bytes").DefValue, ShouldEqual, "20971520")
			So(flags.Lookup("placeholder-url").DefValue, ShouldEqual, "")
		})

		Convey("命令行传入的值绑定到对应配置项", func() {
			So(flags.Set("analyze-timeout", "5s"), ShouldBeNil)
			So(flags.Set("download-max-bytes", "1024"), ShouldBeNil)

			So(viper.GetDuration("illustration.analyze_timeout"), ShouldEqual, 5*time.Second)
			So(viper.GetInt64("download.max_bytes"), ShouldEqual, int64(1024))
		})
	})
}
