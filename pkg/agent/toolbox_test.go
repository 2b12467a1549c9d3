package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMCPServer() *server.MCPServer {
	s := server.NewMCPServer("graphrag-test", "test", server.WithToolCapabilities(true))

	s.AddTool(
		mcp.NewTool("local_search",
			mcp.WithDescription("Entity-focused search"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Question")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := req.Params.Arguments.(map[string]any)
			q, _ := args["query"].(string)
			raw, _ := json.Marshal(map[string]any{"answer": "Answer to " + q})
			return mcp.NewToolResultText(string(raw)), nil
		},
	)
	s.AddTool(
		mcp.NewTool("get_entity", mcp.WithString("entity_name", mcp.Required())),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res := mcp.NewToolResultText(`{"error":"Entity not found"}`)
			res.IsError = true
			return res, nil
		},
	)
	return s
}

func connectedToolbox(t *testing.T) *MCPToolbox {
	t.Helper()
	c, err := client.NewInProcessClient(newTestMCPServer())
	require.NoError(t, err)

	tb := NewMCPToolbox(c)
	require.NoError(t, tb.Connect(context.Background()))
	t.Cleanup(func() { _ = tb.Close() })
	return tb
}

func TestMCPToolbox_Tools(t *testing.T) {
	tb := connectedToolbox(t)

	tools := tb.Tools()
	require.Len(t, tools, 2)

	names := []string{tools[0].Name, tools[1].Name}
	assert.ElementsMatch(t, []string{"local_search", "get_entity"}, names)

	for _, tool := range tools {
		assert.Equal(t, "object", tool.Parameters["type"])
		assert.Contains(t, tool.Parameters, "properties")
		assert.NotNil(t, tool.Handler)
	}
}

func TestMCPToolbox_CallTool(t *testing.T) {
	tb := connectedToolbox(t)

	var local, entity func(context.Context, string) (string, error)
	for _, tool := range tb.Tools() {
		switch tool.Name {
		case "local_search":
			local = tool.Handler
		case "get_entity":
			entity = tool.Handler
		}
	}
	require.NotNil(t, local)
	require.NotNil(t, entity)

	out, err := local(context.Background(), `{query: 'Who leads Project Alpha?'}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"Answer to Who leads Project Alpha?"}`, out)

	out, err = entity(context.Background(), `{"entity_name":"Nobody"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Entity not found"}`, out)

	_, err = local(context.Background(), "hello")
	assert.Error(t, err)
}
