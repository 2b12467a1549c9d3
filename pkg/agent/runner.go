package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cristofima/maf-graphrag-series/pkg/ai"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"
)

var ErrNotConnected = errors.New("not connected to MCP server: call Connect first")

// Response is the answer to one question.
type Response struct {
	Text       string   `json:"text"`
	ToolsUsed  []string `json:"tools_used"`
	TokenCount int      `json:"token_count"`
}

type runnerOptions struct {
	systemPrompt  string
	maxRounds     int
	historyTokens int
	counter       TokenCounter
}

type RunnerOption func(*runnerOptions)

// WithSystemPrompt replaces KnowledgeCaptainPrompt.
func WithSystemPrompt(prompt string) RunnerOption {
	return func(o *runnerOptions) {
		o.systemPrompt = prompt
	}
}

func WithMaxRounds(n int) RunnerOption {
	return func(o *runnerOptions) {
		o.maxRounds = n
	}
}

// WithHistoryTokens caps the history sent with each question. Zero keeps
// the whole conversation.
func WithHistoryTokens(n int) RunnerOption {
	return func(o *runnerOptions) {
		o.historyTokens = n
	}
}

func WithTokenCounter(c TokenCounter) RunnerOption {
	return func(o *runnerOptions) {
		o.counter = c
	}
}

// Runner is a Knowledge Captain session: one MCP connection and one
// conversation history shared by consecutive questions.
type Runner struct {
	chat    ai.ChatClient
	toolbox Toolbox
	opts    runnerOptions

	mu        sync.Mutex
	connected bool
	tools     []ai.Tool
	history   []ai.ChatMessage
}

func NewRunner(chat ai.ChatClient, toolbox Toolbox, opts ...RunnerOption) *Runner {
	o := runnerOptions{
		systemPrompt: KnowledgeCaptainPrompt,
		maxRounds:    10,
		counter:      CountTokens,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner{chat: chat, toolbox: toolbox, opts: o}
}

// Connect opens the MCP session and starts a fresh conversation.
func (r *Runner) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return nil
	}
	if err := r.toolbox.Connect(ctx); err != nil {
		return err
	}
	r.tools = r.toolbox.Tools()
	r.history = nil
	r.connected = true
	return nil
}

// Ask sends question together with the conversation so far and records the
// exchange in the history.
func (r *Runner) Ask(ctx context.Context, question string) (*Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil, ErrNotConnected
	}

	messages := append(append([]ai.ChatMessage{}, r.history...), ai.ChatMessage{Role: ai.RoleUser, Message: question})
	messages = trimHistory(messages, r.opts.historyTokens, r.opts.counter)

	res, err := r.chat.GenerateChatWithTools(ctx, messages, r.tools,
		ai.WithSystemPrompts(r.opts.systemPrompt),
		ai.WithMaxRounds(r.opts.maxRounds),
	)
	if err != nil {
		return nil, fmt.Errorf("agent run failed: %w", err)
	}

	r.history = append(messages, ai.ChatMessage{Role: ai.RoleAssistant, Message: res.Content})
	logger.Debug("Answered question", "tools", res.ToolsUsed, "tokens", res.Usage.TotalTokens, "history", len(r.history))

	return &Response{
		Text:       res.Content,
		ToolsUsed:  res.ToolsUsed,
		TokenCount: res.Usage.TotalTokens,
	}, nil
}

// ClearHistory starts a new conversation without disconnecting.
func (r *Runner) ClearHistory() {
	r.mu.Lock()
	r.history = nil
	r.mu.Unlock()
}

// History returns a copy of the conversation so far.
func (r *Runner) History() []ai.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ai.ChatMessage{}, r.history...)
}

// Close disconnects from the MCP server. Ask fails with ErrNotConnected
// afterwards.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil
	}
	r.connected = false
	r.history = nil
	r.tools = nil
	return r.toolbox.Close()
}
