package config

import (
	"errors"
	"os"
	"sort"
	"strings"
)

// ErrNoAPIKey is returned when no Anthropic API key is configured.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// GetAPIKey returns the Anthropic API key from the configuration.
// It checks in order: environment variable, config file.
func GetAPIKey(cfg *Config) (string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	if cfg != nil && usable(cfg.Anthropic.APIKey) {
		return os.ExpandEnv(cfg.Anthropic.APIKey), nil
	}
	return "", ErrNoAPIKey
}

// ValidateAPIKey checks the format of an Anthropic API key without
// contacting the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskSecret returns a masked version of a credential for display.
// Shows the first 7 characters and last 4 characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 15 {
		return "***"
	}
	return secret[:7] + "..." + secret[len(secret)-4:]
}

// KeySource represents where a credential was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// Secret describes one credential in the effective configuration.
type Secret struct {
	// Key is the dotted config key, e.g. "freshdesk.api_key".
	Key string
	// Env is the environment variable that overrides the key.
	Env    string
	Value  string
	Source KeySource
}

// Masked returns the secret value masked for display.
func (s Secret) Masked() string {
	return MaskSecret(s.Value)
}

// Secrets lists every credential with the place it was loaded from,
// sorted by key.
func (c *Config) Secrets() []Secret {
	values := map[string]string{
		"server.api_key":        c.Server.APIKey,
		"freshdesk.api_key":     c.Freshdesk.APIKey,
		"anthropic.api_key":     c.Anthropic.APIKey,
		"kb_agent.api_key":      c.KBAgent.APIKey,
		"product_agent.api_key": c.ProductAgent.APIKey,
		"price_agent.api_key":   c.PriceAgent.APIKey,
		"discord.token":         c.Discord.Token,
		"backend.api_key":       c.Backend.APIKey,
	}

	secrets := make([]Secret, 0, len(values))
	for key, value := range values {
		env := envBindings[key]
		secrets = append(secrets, Secret{
			Key:    key,
			Env:    env,
			Value:  value,
			Source: sourceOf(env, value),
		})
	}
	sort.Slice(secrets, func(i, j int) bool { return secrets[i].Key < secrets[j].Key })
	return secrets
}

// GetAPIKeySource returns where the Anthropic API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return KeySourceEnv
	}
	if cfg != nil && usable(cfg.Anthropic.APIKey) {
		return KeySourceConfig
	}
	return KeySourceNone
}

func sourceOf(env, value string) KeySource {
	if env != "" && os.Getenv(env) != "" {
		return KeySourceEnv
	}
	if usable(value) {
		return KeySourceConfig
	}
	return KeySourceNone
}

// usable reports whether a configured value survives ${VAR} expansion.
func usable(value string) bool {
	if value == "" {
		return false
	}
	expanded := os.ExpandEnv(value)
	return expanded != "" && !strings.HasPrefix(expanded, "${")
}
