package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the core cannot run without
func (c *Config) Validate() error {
	if err := validateProvider(c.LLM.Provider); err != nil {
		return err
	}
	if err := validateAPIKey(c.LLM.APIKey, c.LLM.Provider); err != nil {
		return err
	}
	if c.LLM.ChatModel == "" {
		return fmt.Errorf("chat model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", c.LLM.Temperature)
	}
	if c.Intent.ConfidenceThreshold < 0 || c.Intent.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be between 0 and 1, got %f", c.Intent.ConfidenceThreshold)
	}
	if c.Intent.HistoryWindow < 0 {
		return fmt.Errorf("history window cannot be negative")
	}
	if c.Agent.MaxTurns <= 0 {
		return fmt.Errorf("agent max turns must be positive, got %d", c.Agent.MaxTurns)
	}
	if c.Summary.MaxWords <= 0 {
		return fmt.Errorf("summary max words must be positive, got %d", c.Summary.MaxWords)
	}
	if c.Sessions.Backend != "memory" && c.Sessions.Backend != "file" {
		return fmt.Errorf("invalid session backend: %s (must be memory or file)", c.Sessions.Backend)
	}
	if c.Handbook.TopK <= 0 {
		return fmt.Errorf("handbook top_k must be positive, got %d", c.Handbook.TopK)
	}
	if c.Employee.RowLimit <= 0 {
		return fmt.Errorf("employee row limit must be positive, got %d", c.Employee.RowLimit)
	}
	if c.Audit.QueueSize <= 0 {
		return fmt.Errorf("audit queue size must be positive, got %d", c.Audit.QueueSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

func validateProvider(provider string) error {
	switch provider {
	case "openai", "anthropic":
		return nil
	default:
		return fmt.Errorf("unsupported LLM provider: %s (must be openai or anthropic)", provider)
	}
}

func validateAPIKey(key, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}
