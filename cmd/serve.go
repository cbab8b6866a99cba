package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storybook/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the Storybook API server with the specified configuration.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()

	// Server flags
	flags.StringP("host", "H", "0.0.0.0", "server host")
	flags.IntP("port", "p", 8080, "server port")
	flags.String("mode", "release", "server mode (debug/release/test)")

	// AI flags
	flags.String("ai-base-url", "https://oi-server.onrender.com", "AI endpoint base URL (without /chat/completions)")
	flags.String("ai-api-key", "", "AI API key (recommend using env: STORYBOOK_AI_API_KEY)")
	flags.String("ai-customer-id", "", "value of the CustomerId header (env: STORYBOOK_AI_CUSTOMER_ID)")
	flags.String("analysis-model", "openrouter/claude-sonnet-4", "model used to split stories into scenes")
	flags.String("image-model", "replicate/black-forest-labs/flux-1.1-pro", "model used to draw scene illustrations")

	// Illustration / download flags
	flags.String("placeholder-url", "", "image used when a scene illustration fails (default: built-in placeholder)")
	flags.Duration("analyze-timeout", 60*time.Second, "time budget for one story analysis request")
	flags.Duration("generate-timeout", 60*time.Second, "time budget for one batch image generation request")
	flags.Duration("download-timeout", 30*time.Second, "timeout for fetching a remote image")
	flags.Int64("download-max-bytes", 20<<20, "largest image the download proxy will return")

	// Log flags
	flags.String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	flags.String("log-format", "console", "log format (json/console)")

	// Bind flags to viper
	_ = viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("ai.base_url", flags.Lookup("ai-base-url"))
	_ = viper.BindPFlag("ai.api_key", flags.Lookup("ai-api-key"))
	_ = viper.BindPFlag("ai.customer_id", flags.Lookup("ai-customer-id"))
	_ = viper.BindPFlag("ai.analysis_model", flags.Lookup("analysis-model"))
	_ = viper.BindPFlag("ai.image_model", flags.Lookup("image-model"))
	_ = viper.BindPFlag("illustration.analyze_timeout", flags.Lookup("analyze-timeout"))
	_ = viper.BindPFlag("illustration.generate_timeout", flags.Lookup("generate-timeout"))
	_ = viper.BindPFlag("download.timeout", flags.Lookup("download-timeout"))
	_ = viper.BindPFlag("download.max_bytes", flags.Lookup("download-max-bytes"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	// 空字符串 flag 不能覆盖默认占位图，只有显式传入时才生效
	if placeholder, _ := cmd.Flags().GetString("placeholder-url"); placeholder != "" {
		cfg.Illustration.PlaceholderURL = placeholder
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Create server
	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("mode", cfg.Server.Mode).
		Str("analysis_model", cfg.AI.AnalysisModel).
		Str("image_model", cfg.AI.ImageModel).
		Dur("analyze_timeout", cfg.Illustration.AnalyzeTimeout).
		Dur("generate_timeout", cfg.Illustration.GenerateTimeout).
		Int64("download_max_bytes", cfg.Download.MaxBytes).
		Msg("starting server")

	return srv.Run(ctx, addr)
}
