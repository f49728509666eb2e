package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/ticketpilot/internal/config"
	"github.com/ShayCichocki/ticketpilot/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ticket analysis HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  POST /api/ticket/analyze   {"ticketId": 123, "options": {...}}
  GET  /health               dependency status

With prompts.watch enabled, templates in prompts.dir are reloaded when
they change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := createPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, keyErr := config.GetAPIKey(cfg)
	srv := server.New(p.orchestrator, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.Port),
		APIKey:          cfg.Server.APIKey,
		Development:     cfg.Server.IsDevelopment(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		LLMConfigured:   keyErr == nil || cfg.Anthropic.UseBedrock,
		Helpdesk:        p.helpdesk,
		Knowledge:       p.knowledge,
		Logger:          logger.Named("http"),
	})

	logger.Info("starting ticketpilot",
		zap.String("version", Version()),
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("model", string(p.llm.Model())),
	)

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Prompts.Watch && p.prompts.Dir() != "" {
		g.Go(func() error {
			if err := p.prompts.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("prompt watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		return srv.Run(ctx)
	})

	err = g.Wait()
	in, out := p.llm.Tracker().Total()
	logger.Info("server stopped",
		zap.Int("llm_calls", p.llm.Tracker().Calls()),
		zap.Int64("input_tokens", in),
		zap.Int64("output_tokens", out),
		zap.Float64("cost_usd", p.llm.Tracker().Cost()),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
