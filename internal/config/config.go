// Package config handles configuration loading and management for ticketpilot.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for ticketpilot.
type Config struct {
	Server       ServerConfig    `mapstructure:"server"`
	Freshdesk    FreshdeskConfig `mapstructure:"freshdesk"`
	Anthropic    AnthropicConfig `mapstructure:"anthropic"`
	KBAgent      AgentConfig     `mapstructure:"kb_agent"`
	ProductAgent AgentConfig     `mapstructure:"product_agent"`
	PriceAgent   AgentConfig     `mapstructure:"price_agent"`
	Discord      DiscordConfig   `mapstructure:"discord"`
	Backend      BackendConfig   `mapstructure:"backend"`
	Prompts      PromptsConfig   `mapstructure:"prompts"`
	Logging      LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// Env is "development" or "production". Auth is skipped in development
	// when no API key is configured.
	Env string `mapstructure:"env"`
	// APIKey is the key callers must send in the x-api-key header.
	APIKey          string        `mapstructure:"api_key"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IsDevelopment reports whether the server runs in development mode.
func (s ServerConfig) IsDevelopment() bool {
	return strings.EqualFold(s.Env, "development")
}

// FreshdeskConfig holds helpdesk settings.
type FreshdeskConfig struct {
	// Domain is the Freshdesk account host, e.g. "acme.freshdesk.com".
	Domain  string        `mapstructure:"domain"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TicketURL returns the agent-facing link to a ticket.
func (f FreshdeskConfig) TicketURL(ticketID int64) string {
	return fmt.Sprintf("https://%s/a/tickets/%d", f.Domain, ticketID)
}

// AnthropicConfig holds LLM settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
	// UseBedrock routes requests through AWS Bedrock instead of the API.
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// AgentConfig holds settings for one downstream agent API.
type AgentConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	// ResolveTimeout applies to synonym resolution calls on the product agent.
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
}

// DiscordConfig holds chat front-end settings.
type DiscordConfig struct {
	Token  string `mapstructure:"token"`
	Prefix string `mapstructure:"prefix"`
}

// BackendConfig tells the chat front end how to reach the HTTP API.
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PromptsConfig holds prompt template settings.
type PromptsConfig struct {
	// Dir optionally overrides the built-in templates with YAML files.
	Dir string `mapstructure:"dir"`
	// Watch reloads templates from Dir when they change.
	Watch bool `mapstructure:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.env":            "NODE_ENV",
	"server.api_key":        "API_KEY",
	"freshdesk.domain":      "FRESHDESK_DOMAIN",
	"freshdesk.api_key":     "FRESHDESK_API_KEY",
	"anthropic.api_key":     "ANTHROPIC_API_KEY",
	"anthropic.model":       "ANTHROPIC_MODEL",
	"kb_agent.url":          "KB_AGENT_URL",
	"kb_agent.api_key":      "KB_AGENT_API_KEY",
	"product_agent.url":     "PRODUCT_AGENT_URL",
	"product_agent.api_key": "PRODUCT_AGENT_API_KEY",
	"price_agent.url":       "PRICE_AGENT_URL",
	"price_agent.api_key":   "PRICE_AGENT_API_KEY",
	"discord.token":         "DISCORD_BOT_TOKEN",
	"backend.url":           "BACKEND_URL",
	"backend.api_key":       "BACKEND_API_KEY",
	"prompts.dir":           "PROMPTS_DIR",
	"logging.level":         "LOG_LEVEL",
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (see envBindings)
// 2. Project config (.ticketpilot.yaml in current directory or parent)
// 3. User config (~/.config/ticketpilot/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
// Environment variables still take precedence over the file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.expandSecrets()
	return cfg, nil
}

// expandSecrets expands ${VAR} references in credential fields.
func (c *Config) expandSecrets() {
	for _, s := range []*string{
		&c.Server.APIKey,
		&c.Freshdesk.APIKey,
		&c.Anthropic.APIKey,
		&c.KBAgent.APIKey,
		&c.ProductAgent.APIKey,
		&c.PriceAgent.APIKey,
		&c.Discord.Token,
		&c.Backend.APIKey,
	} {
		*s = expandEnv(*s)
	}
}

// Validate checks the settings the analysis pipeline cannot run without.
func (c *Config) Validate() error {
	var problems []string
	if c.Freshdesk.Domain == "" {
		problems = append(problems, "freshdesk.domain is required")
	}
	if c.Freshdesk.APIKey == "" {
		problems = append(problems, "freshdesk.api_key is required")
	}
	if c.KBAgent.URL == "" {
		problems = append(problems, "kb_agent.url is required")
	}
	if c.ProductAgent.URL == "" {
		problems = append(problems, "product_agent.url is required")
	}
	if c.PriceAgent.URL == "" {
		problems = append(problems, "price_agent.url is required")
	}
	if !c.Anthropic.UseBedrock {
		if _, err := GetAPIKey(c); err != nil {
			problems = append(problems, "anthropic.api_key is required")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.env", d.Server.Env)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())

	v.SetDefault("freshdesk.domain", "")
	v.SetDefault("freshdesk.api_key", "")
	v.SetDefault("freshdesk.timeout", d.Freshdesk.Timeout.String())

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.max_tokens", d.Anthropic.MaxTokens)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("kb_agent.url", "")
	v.SetDefault("kb_agent.api_key", "")
	v.SetDefault("kb_agent.timeout", d.KBAgent.Timeout.String())

	v.SetDefault("product_agent.url", "")
	v.SetDefault("product_agent.api_key", "")
	v.SetDefault("product_agent.timeout", d.ProductAgent.Timeout.String())
	v.SetDefault("product_agent.resolve_timeout", d.ProductAgent.ResolveTimeout.String())

	v.SetDefault("price_agent.url", "")
	v.SetDefault("price_agent.api_key", "")
	v.SetDefault("price_agent.timeout", d.PriceAgent.Timeout.String())

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.prefix", d.Discord.Prefix)

	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", d.Backend.Timeout.String())

	v.SetDefault("prompts.dir", "")
	v.SetDefault("prompts.watch", false)

	v.SetDefault("logging.level", d.Logging.Level)
}

// getUserConfigDir returns the XDG config directory for ticketpilot.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ticketpilot")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "ticketpilot")
	}
	return filepath.Join(home, ".config", "ticketpilot")
}

// findProjectConfig searches for .ticketpilot.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".ticketpilot.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Env:             "development",
			ShutdownTimeout: 5 * time.Second,
		},
		Freshdesk: FreshdeskConfig{
			Timeout: 15 * time.Second,
		},
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
		},
		KBAgent: AgentConfig{
			Timeout: 20 * time.Second,
		},
		ProductAgent: AgentConfig{
			Timeout:        30 * time.Second,
			ResolveTimeout: 10 * time.Second,
		},
		PriceAgent: AgentConfig{
			Timeout: 30 * time.Second,
		},
		Discord: DiscordConfig{
			Prefix: "!",
		},
		Backend: BackendConfig{
			URL:     "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
