// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modelmayhem/mayhem/internal/provider"
)

// Config represents the application configuration.
type Config struct {
	Server Server                 `yaml:"server,omitempty"`
	Debate Debate                 `yaml:"debate,omitempty"`
	Models map[string]ModelConfig `yaml:"models"`
}

// Server holds web server settings.
type Server struct {
	Port int `yaml:"port"`
}

// Debate holds the pacing knobs for continuous debate sessions.
type Debate struct {
	MinWait  time.Duration `yaml:"min_wait"`
	MaxWait  time.Duration `yaml:"max_wait"`
	MaxTurns int           `yaml:"max_turns"`
}

// ModelConfig holds settings for one model-registry key.
type ModelConfig struct {
	// Kind selects the adapter: groq, openai, openrouter, claude,
	// gemini or mock.
	Kind string `yaml:"kind"`
	// KeyEnvVar names the environment variable holding this key's API
	// key. Separate Groq keys per agent spread rate limits.
	KeyEnvVar string `yaml:"key_env_var,omitempty"`
	Model     string `yaml:"model,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
	Enabled   bool   `yaml:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: Server{Port: 8182},
		Debate: Debate{
			MinWait:  900 * time.Millisecond,
			MaxWait:  3 * time.Second,
			MaxTurns: 15,
		},
		Models: map[string]ModelConfig{
			"groq1":      {Kind: "groq", KeyEnvVar: "GROQ_API_KEY_1", Enabled: true},
			"groq2":      {Kind: "groq", KeyEnvVar: "GROQ_API_KEY_2", Enabled: true},
			"groq3":      {Kind: "groq", KeyEnvVar: "GROQ_API_KEY_3", Enabled: true},
			"groq4":      {Kind: "groq", KeyEnvVar: "GROQ_API_KEY_4", Enabled: true},
			"openai":     {Kind: "openai", KeyEnvVar: "OPENAI_API_KEY", Enabled: true},
			"openrouter": {Kind: "openrouter", KeyEnvVar: "OPENROUTER_API_KEY", Enabled: true},
			"claude":     {Kind: "claude", Enabled: true},
			"gemini":     {Kind: "gemini", Enabled: true},
			"mock":       {Kind: "mock", Enabled: true},
		},
	}
}

// DefaultConfigPath returns ~/.mayhem/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".mayhem", "config.yaml")
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path. A missing file is
// not an error; defaults apply.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Merge with defaults for any missing model keys
	for key, def := range Default().Models {
		if _, exists := cfg.Models[key]; !exists {
			cfg.Models[key] = def
		}
	}

	// Apply .env overrides if file exists
	if env, err := LoadEnv(".env"); err == nil {
		ApplyEnvOverrides(cfg, env)
	}

	return cfg, nil
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// CreateRegistry builds the model client registry from the enabled
// model keys.
func (c *Config) CreateRegistry() *provider.Registry {
	registry := provider.NewRegistry()

	for key, mc := range c.Models {
		if !mc.Enabled {
			continue
		}

		switch mc.Kind {
		case "groq":
			registry.Register(provider.NewGroq(key, mc.KeyEnvVar, mc.Model, mc.MaxTokens))
		case "openai":
			registry.Register(provider.NewOpenAI(key, mc.KeyEnvVar, mc.Model, mc.MaxTokens))
		case "openrouter":
			registry.Register(provider.NewOpenRouter(key, mc.KeyEnvVar, mc.Model, mc.MaxTokens))
		case "claude":
			registry.Register(provider.NewClaude(key, mc.Model, mc.MaxTokens))
		case "gemini":
			registry.Register(provider.NewGemini(key, mc.Model, mc.MaxTokens))
		case "mock":
			registry.Register(provider.NewMock(key))
		}
	}

	return registry
}
