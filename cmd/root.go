package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storybook/internal/config"
	"storybook/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storybook",
	Short: "Storybook - story illustration API service",
	Long: `Storybook turns a short children's story into a handful of illustrated scenes.
It asks a text model to split the story into 2-5 scenes and an image model
to draw each scene, with deterministic fallbacks when the models misbehave.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.storybook")
	}

	// 本地开发时从 .env 加载密钥等环境变量，文件不存在时忽略
	_ = godotenv.Load()

	// 环境变量设置
	viper.SetEnvPrefix("STORYBOOK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s") // 需大于生图请求的时间预算

	// AI
	viper.SetDefault("ai.base_url", "https://oi-server.onrender.com")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.customer_id", "")
	viper.SetDefault("ai.analysis_model", "openrouter/claude-sonnet-4")
	viper.SetDefault("ai.image_model", "replicate/black-forest-labs/flux-1.1-pro")
	viper.SetDefault("ai.timeout", "0s")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 2000)

	// Illustration
	viper.SetDefault("illustration.placeholder_url", "https://storage.googleapis.com/workspace-0f70711f-8b4e-4d94-86f1-2a93ccde5887/image/1687fbc0-bd7d-4a96-a18f-f8891fd09dcc.png")
	viper.SetDefault("illustration.analyze_timeout", "60s")
	viper.SetDefault("illustration.generate_timeout", "60s")

	// Download
	viper.SetDefault("download.timeout", "30s")
	viper.SetDefault("download.user_agent", "")
	viper.SetDefault("download.max_bytes", 20<<20)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file_path", "")
	viper.SetDefault("log.time_format", "RFC3339")
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
