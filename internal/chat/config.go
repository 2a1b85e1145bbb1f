package chat

import (
	"time"

	"dialogue-orchestrator/internal/common/config"
)

const defaultSystemPrompt = "You are a friendly food-ordering assistant. " +
	"Answer briefly and stay on the topic of food, restaurants and orders. " +
	"Only mention restaurants and dishes from the catalog below. " +
	"If the user wants to order, track or change something, tell them the exact phrase to use, " +
	"for example \"order 2 biryanis from Paradise\"."

type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float32
	Timeout      time.Duration
	SystemPrompt string
}

func DefaultConfig() *Config {
	return &Config{
		Model:        "gpt-4o-mini",
		MaxTokens:    512,
		Temperature:  0.7,
		Timeout:      30 * time.Second,
		SystemPrompt: defaultSystemPrompt,
	}
}

// FromAppConfig overlays the chat section of the application config on the
// defaults.
func FromAppConfig(c config.ChatConfig) *Config {
	cfg := DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.APIKey = c.APIKey
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.MaxTokens > 0 {
		cfg.MaxTokens = c.MaxTokens
	}
	if c.Temperature > 0 {
		cfg.Temperature = c.Temperature
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	if c.SystemPrompt != "" {
		cfg.SystemPrompt = c.SystemPrompt
	}
	return cfg
}
