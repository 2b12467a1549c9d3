package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cristofima/maf-graphrag-series/pkg/ai"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	clientName    = "knowledge-captain"
	clientVersion = "1.0.0"
)

// Toolbox supplies the tools the agent may call.
type Toolbox interface {
	Connect(ctx context.Context) error
	Tools() []ai.Tool
	Close() error
}

// MCPToolbox exposes the tools of an MCP server as ai.Tool values.
type MCPToolbox struct {
	client *client.Client

	mu    sync.Mutex
	tools []mcp.Tool
}

// DialStreamable creates an MCP client for a Streamable HTTP endpoint. The
// connection is opened by MCPToolbox.Connect.
func DialStreamable(url string, headers map[string]string) (*client.Client, error) {
	opts := []transport.StreamableHTTPCOption{}
	if len(headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(headers))
	}
	c, err := client.NewStreamableHttpClient(MCPURL(url), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client for %s: %w", url, err)
	}
	return c, nil
}

func NewMCPToolbox(c *client.Client) *MCPToolbox {
	return &MCPToolbox{client: c}
}

// Connect starts the transport, performs the MCP handshake and fetches the
// tool list.
func (t *MCPToolbox) Connect(ctx context.Context) error {
	if err := t.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP transport: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	info, err := t.client.Initialize(ctx, initReq)
	if err != nil {
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	list, err := t.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list MCP tools: %w", err)
	}

	t.mu.Lock()
	t.tools = list.Tools
	t.mu.Unlock()

	logger.Debug("Connected to MCP server", "server", info.ServerInfo.Name, "version", info.ServerInfo.Version, "tools", len(list.Tools))
	return nil
}

// Tools adapts every listed MCP tool into an ai.Tool whose handler calls the
// server.
func (t *MCPToolbox) Tools() []ai.Tool {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ai.Tool, 0, len(t.tools))
	for _, tool := range t.tools {
		out = append(out, ai.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  inputSchema(tool),
			Handler:     t.handler(tool.Name),
		})
	}
	return out
}

func (t *MCPToolbox) handler(name string) ai.ToolHandler {
	return func(ctx context.Context, arguments string) (string, error) {
		args, err := ai.ToolArguments(arguments)
		if err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
		}

		req := mcp.CallToolRequest{}
		req.Params.Name = name
		req.Params.Arguments = args

		res, err := t.client.CallTool(ctx, req)
		if err != nil {
			return "", err
		}

		// Failed tools still carry a JSON error object the model can read.
		text := resultText(res)
		if res.IsError {
			logger.Debug("[Tool] returned error", "tool", name, "result", text)
		}
		return text, nil
	}
}

func (t *MCPToolbox) Close() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func resultText(res *mcp.CallToolResult) string {
	parts := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func inputSchema(tool mcp.Tool) map[string]any {
	raw := tool.RawInputSchema
	if len(raw) == 0 {
		b, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return map[string]any{"type": "object"}
		}
		raw = b
	}

	schema := map[string]any{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return map[string]any{"type": "object"}
	}
	if _, ok := schema["properties"]; !ok {
		schema["properties"] = map[string]any{}
	}
	return schema
}
