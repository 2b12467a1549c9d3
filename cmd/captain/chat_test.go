package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cristofima/maf-graphrag-series/pkg/agent"
	"github.com/cristofima/maf-graphrag-series/pkg/ai"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoChat struct {
	asked []int
}

func (e *echoChat) GenerateChatWithTools(ctx context.Context, messages []ai.ChatMessage, tools []ai.Tool, opts ...ai.GenerateOption) (*ai.ChatResult, error) {
	e.asked = append(e.asked, len(messages))
	return &ai.ChatResult{Content: "echo: " + messages[len(messages)-1].Message}, nil
}

type noTools struct{}

func (noTools) Connect(context.Context) error { return nil }
func (noTools) Tools() []ai.Tool              { return nil }
func (noTools) Close() error                  { return nil }

func TestChatLoop(t *testing.T) {
	c := &echoChat{}
	runner := agent.NewRunner(c, noTools{}, agent.WithTokenCounter(func(s string) int { return len(s) }))
	require.NoError(t, runner.Connect(context.Background()))

	in := strings.NewReader("Who leads Project Alpha?\n\nWhat about Beta?\nclear\nAnd Gamma?\nquit\nnever asked\n")
	var out bytes.Buffer

	require.NoError(t, chat(context.Background(), runner, nil, in, &out))

	assert.Equal(t, []int{1, 3, 1}, c.asked)
	assert.Contains(t, out.String(), "echo: Who leads Project Alpha?")
	assert.Contains(t, out.String(), "Conversation history cleared.")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.NotContains(t, out.String(), "never asked")
}

func TestChatLoop_EOF(t *testing.T) {
	runner := agent.NewRunner(&echoChat{}, noTools{})
	require.NoError(t, runner.Connect(context.Background()))

	var out bytes.Buffer
	assert.NoError(t, chat(context.Background(), runner, nil, strings.NewReader(""), &out))
}

func TestStatsTable(t *testing.T) {
	out := statsTable("/data/output", graph.Stats{
		Entities:      12,
		Relationships: 30,
		HasDocuments:  true,
		Documents:     2,
		EntityTypes:   []string{"PERSON", "PROJECT"},
	})

	assert.Contains(t, out, "/data/output")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "PERSON, PROJECT")
	assert.Contains(t, out, "not available")
}
