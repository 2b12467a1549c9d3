package config

import (
	"fmt"

	"github.com/cristofima/maf-graphrag-series/internal/util"

	"github.com/go-playground/validator"
)

// AgentConfig is the configuration of the Knowledge Captain agent.
type AgentConfig struct {
	// Endpoint is the Azure OpenAI resource endpoint. When BaseURL is set
	// instead, the agent talks to any OpenAI-compatible API.
	Endpoint   string
	BaseURL    string
	APIKey     string `validate:"required"`
	APIVersion string
	Deployment string `validate:"required"`

	MCPServerURL string `validate:"required,url"`
	MaxRounds    int    `validate:"min=1"`
	// HistoryTokens caps the conversation history sent with each question.
	HistoryTokens int `validate:"min=0"`

	// Root is where the agent looks for local artifacts for the stats command.
	Root string

	Debug     bool
	LogFormat string
}

// UsesAzure reports whether requests go to an Azure OpenAI deployment.
func (c *AgentConfig) UsesAzure() bool {
	return c.BaseURL == ""
}

// LoadAgent reads the agent configuration from the environment.
func LoadAgent() (*AgentConfig, error) {
	cfg := &AgentConfig{
		Endpoint:      util.GetEnv("AZURE_OPENAI_ENDPOINT"),
		BaseURL:       util.GetEnv("OPENAI_BASE_URL"),
		APIKey:        util.GetEnvString("AZURE_OPENAI_API_KEY", util.GetEnv("OPENAI_API_KEY")),
		APIVersion:    util.GetEnvString("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		Deployment:    util.GetEnvString("AZURE_OPENAI_CHAT_DEPLOYMENT", "gpt-4o"),
		MCPServerURL:  util.GetEnvString("MCP_SERVER_URL", "http://127.0.0.1:8011/mcp"),
		MaxRounds:     util.GetEnvInt("AGENT_MAX_ROUNDS", 10),
		HistoryTokens: util.GetEnvInt("AGENT_HISTORY_TOKENS", 16000),
		Root:          util.GetEnvString("GRAPHRAG_ROOT", "."),
		Debug:         util.GetEnvBool("DEBUG", false),
		LogFormat:     util.GetEnvString("LOG_FORMAT", "text"),
	}

	if cfg.UsesAzure() && cfg.Endpoint == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT environment variable is required. Set it to your Azure OpenAI endpoint URL, or set OPENAI_BASE_URL for an OpenAI-compatible API")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}
	return cfg, nil
}
