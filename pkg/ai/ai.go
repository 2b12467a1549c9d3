package ai

import (
	"context"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolHandler runs one tool call. arguments is the raw JSON the model
// produced; the returned text is sent back to the model as the tool result.
type ToolHandler func(ctx context.Context, arguments string) (string, error)

// Tool is a function the model may call while answering.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON Schema of the arguments object.
	Parameters map[string]any
	Handler    ToolHandler
}

// FindTool returns the tool called name, or false.
func FindTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// ChatMessage is one turn of a conversation. Role is RoleUser or
// RoleAssistant; other roles are ignored by clients.
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

type GenerateOptions struct {
	Model         string // model name, or the deployment name on Azure
	SystemPrompts []string
	Temperature   float64
	MaxRounds     int // upper bound of model calls in a tool loop
}

// ModelMetrics accumulates token usage and model latency.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// ChatResult is the outcome of a chat with tools.
type ChatResult struct {
	Content   string
	ToolsUsed []string     // Tool names in call order, repeats included
	Usage     ModelMetrics // Usage summed over every round of this request
}

type GenerateOption func(*GenerateOptions)

// WithModel overrides the client's default model.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system messages sent before the conversation.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxRounds limits how many times the model is called while it keeps
// requesting tools.
func WithMaxRounds(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxRounds = n
	}
}

// ChatClient is a chat model that can call tools.
type ChatClient interface {
	GenerateChatWithTools(
		ctx context.Context,
		messages []ChatMessage,
		tools []Tool,
		opts ...GenerateOption,
	) (*ChatResult, error)
}
