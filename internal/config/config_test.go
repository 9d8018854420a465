package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ChatModel)
	assert.Equal(t, 0.6, cfg.Intent.ConfidenceThreshold)
	assert.Equal(t, 10, cfg.Agent.MaxTurns)
	assert.Equal(t, 100, cfg.Summary.MaxWords)
	assert.Equal(t, "memory", cfg.Sessions.Backend)
	assert.Equal(t, "hr_rag", cfg.Handbook.Collection)
	assert.Equal(t, 4, cfg.Handbook.TopK)
	assert.Equal(t, 50, cfg.Employee.RowLimit)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestConfigStringMasksAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-very-secret-key"

	s := cfg.String()
	assert.NotContains(t, s, "sk-very-secret-key")
	assert.Contains(t, s, "***")
}
