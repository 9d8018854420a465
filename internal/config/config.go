package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main HR Assistant configuration
type Config struct {
	// LLM provider configuration
	LLM LLMConfig `json:"llm" mapstructure:"llm"`

	// Intent classification
	Intent IntentConfig `json:"intent" mapstructure:"intent"`

	// Agent loop
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Summarization
	Summary SummaryConfig `json:"summary" mapstructure:"summary"`

	// Session storage
	Sessions SessionsConfig `json:"sessions" mapstructure:"sessions"`

	// Handbook vector store
	Handbook HandbookConfig `json:"handbook" mapstructure:"handbook"`

	// Employee database
	Employee EmployeeConfig `json:"employee" mapstructure:"employee"`

	// Audit trail
	Audit AuditConfig `json:"audit" mapstructure:"audit"`

	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Prompt files directory
	PromptsDir string `json:"prompts_dir" mapstructure:"prompts_dir"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	Provider       string  `json:"provider" mapstructure:"provider"` // openai, anthropic
	APIKey         string  `json:"api_key" mapstructure:"api_key"`
	ChatModel      string  `json:"chat_model" mapstructure:"chat_model"`
	EmbeddingModel string  `json:"embedding_model" mapstructure:"embedding_model"`
	Temperature    float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens      int     `json:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries     int     `json:"max_retries" mapstructure:"max_retries"`
}

// IntentConfig holds intent classification configuration
type IntentConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold" mapstructure:"confidence_threshold"`
	HistoryWindow       int     `json:"history_window" mapstructure:"history_window"`
	Temperature         float64 `json:"temperature" mapstructure:"temperature"`
}

// AgentConfig holds agent loop configuration
type AgentConfig struct {
	MaxTurns int `json:"max_turns" mapstructure:"max_turns"`
}

// SummaryConfig holds answer summarization configuration
type SummaryConfig struct {
	MaxWords    int     `json:"max_words" mapstructure:"max_words"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

// SessionsConfig holds session store configuration
type SessionsConfig struct {
	Backend string `json:"backend" mapstructure:"backend"` // memory, file
	Dir     string `json:"dir" mapstructure:"dir"`
}

// HandbookConfig holds handbook retrieval configuration
type HandbookConfig struct {
	DBPath     string `json:"db_path" mapstructure:"db_path"`
	Collection string `json:"collection" mapstructure:"collection"`
	TopK       int    `json:"top_k" mapstructure:"top_k"`
}

// EmployeeConfig holds employee database configuration
type EmployeeConfig struct {
	DBPath   string `json:"db_path" mapstructure:"db_path"`
	CSVPath  string `json:"csv_path" mapstructure:"csv_path"`
	RowLimit int    `json:"row_limit" mapstructure:"row_limit"`
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Dir       string `json:"dir" mapstructure:"dir"`
	QueueSize int    `json:"queue_size" mapstructure:"queue_size"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config populated with defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			ChatModel:      "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.7,
			MaxTokens:      4096,
			MaxRetries:     3,
		},
		Intent: IntentConfig{
			ConfidenceThreshold: 0.6,
			HistoryWindow:       3,
			Temperature:         0.1,
		},
		Agent: AgentConfig{
			MaxTurns: 10,
		},
		Summary: SummaryConfig{
			MaxWords:    100,
			Temperature: 0.3,
		},
		Sessions: SessionsConfig{
			Backend: "memory",
		},
		Handbook: HandbookConfig{
			Collection: "hr_rag",
			TopK:       4,
		},
		Employee: EmployeeConfig{
			RowLimit: 50,
		},
		Audit: AuditConfig{
			Enabled:   true,
			QueueSize: 256,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}

// String returns a JSON representation with the API key masked
func (c *Config) String() string {
	clone := *c
	if clone.LLM.APIKey != "" {
		clone.LLM.APIKey = "***"
	}
	data, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("config marshal error: %v", err)
	}
	return string(data)
}
