package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cristofima/maf-graphrag-series/pkg/ai"

	"github.com/mark3labs/mcp-go/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	calls   [][]ai.ChatMessage
	options []ai.GenerateOptions
	err     error
}

func (f *fakeChat) GenerateChatWithTools(ctx context.Context, messages []ai.ChatMessage, tools []ai.Tool, opts ...ai.GenerateOption) (*ai.ChatResult, error) {
	var o ai.GenerateOptions
	for _, opt := range opts {
		opt(&o)
	}
	f.calls = append(f.calls, append([]ai.ChatMessage{}, messages...))
	f.options = append(f.options, o)
	if f.err != nil {
		return nil, f.err
	}

	used := []string{}
	if len(tools) > 0 {
		out, err := tools[0].Handler(ctx, `{"query":"x"}`)
		if err != nil {
			return nil, err
		}
		used = append(used, tools[0].Name)
		_ = out
	}
	last := messages[len(messages)-1].Message
	return &ai.ChatResult{
		Content:   "answer: " + last,
		ToolsUsed: used,
		Usage:     ai.ModelMetrics{TotalTokens: 42},
	}, nil
}

type fakeToolbox struct {
	connectErr error
	connects   int
	closed     bool
	calls      []string
}

func (f *fakeToolbox) Connect(context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeToolbox) Tools() []ai.Tool {
	return []ai.Tool{{
		Name: "local_search",
		Handler: func(ctx context.Context, args string) (string, error) {
			f.calls = append(f.calls, args)
			return `{"answer":"ok"}`, nil
		},
	}}
}

func (f *fakeToolbox) Close() error {
	f.closed = true
	return nil
}

func wordCounter(s string) int {
	return len(strings.Fields(s))
}

func TestRunner_AskRequiresConnect(t *testing.T) {
	r := NewRunner(&fakeChat{}, &fakeToolbox{})

	_, err := r.Ask(context.Background(), "Who leads Project Alpha?")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRunner_ConnectError(t *testing.T) {
	tb := &fakeToolbox{connectErr: errors.New("connection refused")}
	r := NewRunner(&fakeChat{}, tb)

	require.Error(t, r.Connect(context.Background()))
	_, err := r.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRunner_AskKeepsHistory(t *testing.T) {
	chat := &fakeChat{}
	tb := &fakeToolbox{}
	r := NewRunner(chat, tb, WithMaxRounds(3), WithTokenCounter(wordCounter))
	require.NoError(t, r.Connect(context.Background()))
	require.NoError(t, r.Connect(context.Background()))
	assert.Equal(t, 1, tb.connects)

	resp, err := r.Ask(context.Background(), "Who leads Project Alpha?")
	require.NoError(t, err)
	assert.Equal(t, "answer: Who leads Project Alpha?", resp.Text)
	assert.Equal(t, []string{"local_search"}, resp.ToolsUsed)
	assert.Equal(t, 42, resp.TokenCount)
	assert.Len(t, tb.calls, 1)

	_, err = r.Ask(context.Background(), "What about Project Beta?")
	require.NoError(t, err)

	require.Len(t, chat.calls, 2)
	second := chat.calls[1]
	require.Len(t, second, 3)
	assert.Equal(t, ai.RoleUser, second[0].Role)
	assert.Equal(t, ai.RoleAssistant, second[1].Role)
	assert.Equal(t, "What about Project Beta?", second[2].Message)

	assert.Equal(t, []string{KnowledgeCaptainPrompt}, chat.options[0].SystemPrompts)
	assert.Equal(t, 3, chat.options[0].MaxRounds)
	assert.Len(t, r.History(), 4)
}

func TestRunner_ClearHistory(t *testing.T) {
	chat := &fakeChat{}
	r := NewRunner(chat, &fakeToolbox{}, WithSystemPrompt(SimpleAssistantPrompt))
	require.NoError(t, r.Connect(context.Background()))

	_, err := r.Ask(context.Background(), "first")
	require.NoError(t, err)
	r.ClearHistory()
	assert.Empty(t, r.History())

	_, err = r.Ask(context.Background(), "second")
	require.NoError(t, err)
	assert.Len(t, chat.calls[1], 1)
	assert.Equal(t, []string{SimpleAssistantPrompt}, chat.options[1].SystemPrompts)
}

func TestRunner_HistoryBudget(t *testing.T) {
	chat := &fakeChat{}
	// Each message costs its words plus the framing overhead.
	r := NewRunner(chat, &fakeToolbox{}, WithHistoryTokens(20), WithTokenCounter(wordCounter))
	require.NoError(t, r.Connect(context.Background()))

	for _, q := range []string{"one two three", "four five six", "seven eight nine"} {
		_, err := r.Ask(context.Background(), q)
		require.NoError(t, err)
	}

	last := chat.calls[len(chat.calls)-1]
	assert.Equal(t, "seven eight nine", last[len(last)-1].Message)
	assert.Equal(t, ai.RoleUser, last[0].Role)
	total := 0
	for _, m := range last {
		total += wordCounter(m.Message) + messageOverhead
	}
	assert.LessOrEqual(t, total, 20)
}

func TestRunner_AskError(t *testing.T) {
	chat := &fakeChat{err: errors.New("rate limited")}
	r := NewRunner(chat, &fakeToolbox{})
	require.NoError(t, r.Connect(context.Background()))

	_, err := r.Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Empty(t, r.History())
}

func TestRunner_Close(t *testing.T) {
	tb := &fakeToolbox{}
	r := NewRunner(&fakeChat{}, tb)
	require.NoError(t, r.Connect(context.Background()))

	require.NoError(t, r.Close())
	assert.True(t, tb.closed)

	_, err := r.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, r.Close())
}

func TestRunner_WithMCPToolbox(t *testing.T) {
	c, err := client.NewInProcessClient(newTestMCPServer())
	require.NoError(t, err)

	chat := &fakeChat{}
	r := NewRunner(chat, NewMCPToolbox(c))
	require.NoError(t, r.Connect(context.Background()))
	defer r.Close()

	resp, err := r.Ask(context.Background(), "Who leads Project Alpha?")
	require.NoError(t, err)
	assert.Len(t, resp.ToolsUsed, 1)
}
