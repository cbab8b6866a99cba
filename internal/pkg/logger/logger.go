package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"storybook/internal/config"
)

// Init 初始化全局日志
func Init(cfg *config.LogConfig) error {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = timeFieldFormat(cfg.TimeFormat)

	output, err := buildWriter(cfg)
	if err != nil {
		return err
	}

	log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	return nil
}

// parseLevel 解析日志级别，非法值回退到 info
func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

func timeFieldFormat(format string) string {
	switch format {
	case "Unix":
		return zerolog.TimeFormatUnix
	case "UnixMs":
		return zerolog.TimeFormatUnixMs
	default:
		return time.RFC3339
	}
}

// buildWriter 按配置组装输出目标
//   - output: stdout（默认）/ stderr / file
//   - format: console 时包一层 ConsoleWriter，json 直接输出
func buildWriter(cfg *config.LogConfig) (io.Writer, error) {
	var output io.Writer = os.Stdout
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "file":
		if cfg.FilePath != "" {
			file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, err
			}
			output = file
		}
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}
	return output, nil
}
