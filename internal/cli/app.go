package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Cherwin23/HR-Assistant/internal/config"
	"github.com/Cherwin23/HR-Assistant/internal/logger"
	"github.com/Cherwin23/HR-Assistant/pkg/agent"
	"github.com/Cherwin23/HR-Assistant/pkg/assistant"
	"github.com/Cherwin23/HR-Assistant/pkg/audit"
	"github.com/Cherwin23/HR-Assistant/pkg/employee"
	"github.com/Cherwin23/HR-Assistant/pkg/intent"
	"github.com/Cherwin23/HR-Assistant/pkg/knowledge"
	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/prompt"
	"github.com/Cherwin23/HR-Assistant/pkg/session"
	"github.com/Cherwin23/HR-Assistant/pkg/tool"
)

// app holds the assembled component graph for one process
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	prompts   *prompt.Store
	handbook  *knowledge.Store
	employees *employee.DB
	sessions  session.Store
	recorder  *audit.Recorder
	pool      *tool.WorkerPool
	assistant *assistant.Assistant
}

// loadConfig resolves configuration from the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
	})
}

// newApp assembles the full assistant from configuration
func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	zlog := log.GetZerolog()

	provider, err := llm.NewProvider(cfg.LLM.Provider, cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	embedder := llm.NewOpenAIEmbedder(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)

	prompts, err := prompt.NewStore(cfg.PromptsDir, zlog)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt store: %w", err)
	}

	handbook, err := knowledge.NewStore(knowledge.Config{
		DBPath:     cfg.Handbook.DBPath,
		Collection: cfg.Handbook.Collection,
		Embedder:   embedder,
		Logger:     zlog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open handbook store: %w", err)
	}

	employees, err := employee.Open(employee.Config{
		DBPath:   cfg.Employee.DBPath,
		CSVPath:  cfg.Employee.CSVPath,
		RowLimit: cfg.Employee.RowLimit,
		Logger:   zlog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open employee database: %w", err)
	}

	registry := tool.NewRegistry(zlog)
	if err := registry.Register(*knowledge.NewTool(handbook, cfg.Handbook.TopK)); err != nil {
		return nil, err
	}
	if err := registry.Register(*employee.NewTool(employees)); err != nil {
		return nil, err
	}

	pool := tool.NewWorkerPool(0)
	dispatcher, err := tool.NewDispatcher(registry, pool, zlog)
	if err != nil {
		return nil, err
	}

	engine, err := agent.New(provider, registry, dispatcher, agent.Config{
		Model:        cfg.LLM.ChatModel,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		SystemPrompt: prompts.Get(prompt.System),
		MaxTurns:     cfg.Agent.MaxTurns,
		MaxRetries:   cfg.LLM.MaxRetries,
	}, zlog)
	if err != nil {
		return nil, err
	}

	router, err := intent.NewRouter(provider, prompts, intent.Config{
		Model:         cfg.LLM.ChatModel,
		Temperature:   cfg.Intent.Temperature,
		HistoryWindow: cfg.Intent.HistoryWindow,
	}, zlog)
	if err != nil {
		return nil, err
	}

	sessions, err := newSessionStore(cfg, zlog)
	if err != nil {
		return nil, err
	}

	recorder, err := newRecorder(cfg, zlog)
	if err != nil {
		return nil, err
	}

	summarizer := assistant.NewSummarizer(provider, prompts, cfg.LLM.ChatModel, cfg.Summary.MaxWords, cfg.Summary.Temperature, zlog)

	asst, err := assistant.New(router, engine, sessions, summarizer, recorder, assistant.Config{
		ConfidenceThreshold: cfg.Intent.ConfidenceThreshold,
	}, zlog)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       log,
		prompts:   prompts,
		handbook:  handbook,
		employees: employees,
		sessions:  sessions,
		recorder:  recorder,
		pool:      pool,
		assistant: asst,
	}, nil
}

func newSessionStore(cfg *config.Config, zlog zerolog.Logger) (session.Store, error) {
	switch cfg.Sessions.Backend {
	case "file":
		return session.NewFileStore(cfg.Sessions.Dir, zlog)
	default:
		return session.NewMemoryStore(), nil
	}
}

func newRecorder(cfg *config.Config, zlog zerolog.Logger) (*audit.Recorder, error) {
	if !cfg.Audit.Enabled {
		return audit.NewRecorder(nil, cfg.Audit.QueueSize, zlog), nil
	}

	sink, err := audit.NewFileSink(cfg.Audit.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit sink: %w", err)
	}
	return audit.NewRecorder(sink, cfg.Audit.QueueSize, zlog), nil
}

// close shuts components down in dependency order
func (a *app) close() {
	a.recorder.Close()
	a.pool.Close()
	a.prompts.Close()
	a.sessions.Close()
	a.employees.Close()
	a.handbook.Close()
	a.log.Close()
}
