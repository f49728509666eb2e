package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/bot"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Discord bot",
	Long: `Connect to Discord and answer "!ticket <id>" commands by calling the
HTTP API at backend.url. Run "ticketpilot serve" first.

Requires DISCORD_BOT_TOKEN. The command prefix defaults to "!".`,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	backend := bot.NewBackend(bot.BackendConfig{
		URL:     cfg.Backend.URL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger.Named("backend"),
	})

	b, err := bot.New(bot.Config{
		Token:  cfg.Discord.Token,
		Prefix: cfg.Discord.Prefix,
		Logger: logger.Named("discord"),
	}, backend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The bot still starts when the API is down; each command reports it.
	if health, err := backend.Health(ctx); err != nil {
		logger.Warn("backend health check failed", zap.String("url", cfg.Backend.URL), zap.Error(err))
	} else {
		logger.Info("backend reachable", zap.String("url", cfg.Backend.URL), zap.Any("status", health["status"]))
	}

	logger.Info("starting discord bot", zap.String("version", Version()), zap.String("prefix", cfg.Discord.Prefix))
	return b.Run(ctx)
}
