package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/internal/config"
	"github.com/ShayCichocki/ticketpilot/internal/helpdesk"
	"github.com/ShayCichocki/ticketpilot/internal/llm"
	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/internal/prompt"
	"github.com/ShayCichocki/ticketpilot/internal/triage"
)

// loadConfig reads the configuration, honoring --config and --log-level.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Logging.Level, cfg.Server.IsDevelopment())
}

// pipeline holds the service handles shared by the serve and analyze
// commands.
type pipeline struct {
	orchestrator *triage.Orchestrator
	helpdesk     *helpdesk.Client
	knowledge    *agents.KnowledgeClient
	llm          *llm.Client
	prompts      *prompt.Set
}

// createPipeline builds every client from cfg and wires them into an
// orchestrator.
func createPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiKey, _ := config.GetAPIKey(cfg)
	llmClient, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		MaxTokens:     cfg.Anthropic.MaxTokens,
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
		Logger:        logger.Named("llm"),
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	prompts, err := prompt.NewSet(prompt.WithDir(cfg.Prompts.Dir), prompt.WithLogger(logger.Named("prompt")))
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	fd := helpdesk.NewClient(helpdesk.Config{
		Domain:  cfg.Freshdesk.Domain,
		APIKey:  cfg.Freshdesk.APIKey,
		Timeout: cfg.Freshdesk.Timeout,
		Logger:  logger.Named("freshdesk"),
	})
	kb := agents.NewKnowledgeClient(agents.Config{
		BaseURL: cfg.KBAgent.URL,
		APIKey:  cfg.KBAgent.APIKey,
		Timeout: cfg.KBAgent.Timeout,
		Logger:  logger.Named("kb_agent"),
	})
	product := agents.NewProductClient(agents.ProductConfig{
		Config: agents.Config{
			BaseURL: cfg.ProductAgent.URL,
			APIKey:  cfg.ProductAgent.APIKey,
			Timeout: cfg.ProductAgent.Timeout,
			Logger:  logger.Named("product_agent"),
		},
		ResolveTimeout: cfg.ProductAgent.ResolveTimeout,
	})
	price := agents.NewPriceClient(agents.Config{
		BaseURL: cfg.PriceAgent.URL,
		APIKey:  cfg.PriceAgent.APIKey,
		Timeout: cfg.PriceAgent.Timeout,
		Logger:  logger.Named("price_agent"),
	})

	orch := triage.New(triage.Deps{
		Fetcher:   fd,
		LLM:       llmClient,
		Prompts:   prompts,
		Knowledge: kb,
		Product:   product,
		Price:     price,
		Synonyms:  product,
		TicketURL: cfg.Freshdesk.TicketURL,
		Logger:    logger.Named("triage"),
	})

	return &pipeline{
		orchestrator: orch,
		helpdesk:     fd,
		knowledge:    kb,
		llm:          llmClient,
		prompts:      prompts,
	}, nil
}
