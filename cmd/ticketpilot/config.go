package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/ticketpilot/internal/config"
	"github.com/ShayCichocki/ticketpilot/internal/render"
)

var configCheck bool

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration",
	Long: `Show the effective ticketpilot configuration.

Without arguments, displays every setting. Credentials are masked and
annotated with where they were loaded from.
With one argument (key), displays the value for that key.
With --check, validates the configuration for the serve command.

Configuration is stored at ~/.config/ticketpilot/config.yaml
Project-specific overrides can be placed in .ticketpilot.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		out := cmd.OutOrStdout()
		switch {
		case configCheck:
			return checkConfig(out, cfg)
		case len(args) == 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
		default:
			displayAllConfig(out, cfg)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configCheck, "check", false, "Validate the configuration")
}

type configEntry struct {
	key   string
	value string
}

// configEntries lists the non-secret settings in display order.
func configEntries(cfg *config.Config) []configEntry {
	return []configEntry{
		{"server.port", strconv.Itoa(cfg.Server.Port)},
		{"server.env", cfg.Server.Env},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeout.String()},
		{"freshdesk.domain", cfg.Freshdesk.Domain},
		{"freshdesk.timeout", cfg.Freshdesk.Timeout.String()},
		{"anthropic.model", cfg.Anthropic.Model},
		{"anthropic.max_tokens", strconv.FormatInt(cfg.Anthropic.MaxTokens, 10)},
		{"anthropic.use_bedrock", strconv.FormatBool(cfg.Anthropic.UseBedrock)},
		{"anthropic.aws_region", cfg.Anthropic.AWSRegion},
		{"anthropic.aws_profile", cfg.Anthropic.AWSProfile},
		{"kb_agent.url", cfg.KBAgent.URL},
		{"kb_agent.timeout", cfg.KBAgent.Timeout.String()},
		{"product_agent.url", cfg.ProductAgent.URL},
		{"product_agent.timeout", cfg.ProductAgent.Timeout.String()},
		{"product_agent.resolve_timeout", cfg.ProductAgent.ResolveTimeout.String()},
		{"price_agent.url", cfg.PriceAgent.URL},
		{"price_agent.timeout", cfg.PriceAgent.Timeout.String()},
		{"discord.prefix", cfg.Discord.Prefix},
		{"backend.url", cfg.Backend.URL},
		{"backend.timeout", cfg.Backend.Timeout.String()},
		{"prompts.dir", cfg.Prompts.Dir},
		{"prompts.watch", strconv.FormatBool(cfg.Prompts.Watch)},
		{"logging.level", cfg.Logging.Level},
	}
}

// displayAllConfig prints all configuration values.
func displayAllConfig(w io.Writer, cfg *config.Config) {
	for _, e := range configEntries(cfg) {
		fmt.Fprintf(w, "%s: %s\n", e.key, orNotSet(e.value))
	}
	for _, s := range cfg.Secrets() {
		fmt.Fprintf(w, "%s: %s\n", s.Key, describeSecret(s))
	}
}

func describeSecret(s config.Secret) string {
	if s.Source == config.KeySourceNone {
		return "(not set)"
	}
	return fmt.Sprintf("%s (%s)", s.Masked(), s.Source)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	key = strings.ToLower(key)
	for _, e := range configEntries(cfg) {
		if e.key == key {
			return orNotSet(e.value), nil
		}
	}
	for _, s := range cfg.Secrets() {
		if s.Key == key {
			return describeSecret(s), nil
		}
	}
	return "", fmt.Errorf("unknown configuration key: %s", key)
}

// checkConfig reports whether the serve command could start with cfg.
func checkConfig(w io.Writer, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		render.Fail(w, err.Error())
		return err
	}
	render.OK(w, "Required settings present")

	if cfg.Anthropic.UseBedrock {
		render.OK(w, fmt.Sprintf("Using AWS Bedrock in %s", orNotSet(cfg.Anthropic.AWSRegion)))
	} else if key, err := config.GetAPIKey(cfg); err == nil {
		if err := config.ValidateAPIKey(key); err != nil {
			render.Warn(w, err.Error())
		} else {
			render.OK(w, fmt.Sprintf("Anthropic API key from %s", config.GetAPIKeySource(cfg)))
		}
	}

	if cfg.Server.APIKey == "" {
		if cfg.Server.IsDevelopment() {
			render.Warn(w, "server.api_key is not set; requests are not authenticated in development")
		} else {
			render.Warn(w, "server.api_key is not set; every analyze request will be rejected")
		}
	}
	if cfg.Discord.Token == "" {
		render.Warn(w, "discord.token is not set; the bot command will not start")
	}
	return nil
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
