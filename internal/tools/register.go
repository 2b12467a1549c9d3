package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cristofima/maf-graphrag-series/internal/metrics"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Tool names.
const (
	ToolSearchKnowledgeGraph = "search_knowledge_graph"
	ToolLocalSearch          = "local_search"
	ToolGlobalSearch         = "global_search"
	ToolDriftSearch          = "drift_search"
	ToolBasicSearch          = "basic_search"
	ToolListEntities         = "list_entities"
	ToolGetEntity            = "get_entity"
	ToolGraphStats           = "get_graph_stats"
)

// handler computes a tool payload. failed marks payloads that describe an
// error; they are still returned to the caller as JSON.
type handler func(ctx context.Context, args arguments, log *logger.Scoped) (payload any, failed bool)

// RegisterAll adds every GraphRAG tool to s.
func RegisterAll(s *server.MCPServer, deps *Dependencies) {
	for _, t := range Definitions() {
		s.AddTool(t, Handler(t.Name, deps))
	}
}

// Handler returns the mcp-go handler of the named tool, or nil when the name
// is unknown.
func Handler(name string, deps *Dependencies) server.ToolHandlerFunc {
	var h handler
	switch name {
	case ToolSearchKnowledgeGraph:
		h = deps.searchKnowledgeGraph
	case ToolLocalSearch:
		h = deps.localSearch
	case ToolGlobalSearch:
		h = deps.globalSearch
	case ToolDriftSearch:
		h = deps.driftSearch
	case ToolBasicSearch:
		h = deps.basicSearch
	case ToolListEntities:
		h = deps.listEntities
	case ToolGetEntity:
		h = deps.getEntity
	case ToolGraphStats:
		h = deps.graphStats
	default:
		return nil
	}
	return instrument(name, h)
}

func instrument(name string, h handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		started := time.Now()
		log := logger.With("tool", name, "request_id", requestID())

		args, _ := req.Params.Arguments.(map[string]any)
		log.Debug("Tool call", "args", args)

		payload, failed := h(ctx, arguments(args), log)
		metrics.ObserveTool(name, started, failed)

		raw, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to encode tool result", "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}

		duration := time.Since(started)
		if failed {
			log.Warn("Tool call failed", "duration", duration, "result", string(raw))
		} else {
			log.Info("Tool call completed", "duration", duration)
		}

		res := mcp.NewToolResultText(string(raw))
		res.IsError = failed
		return res, nil
	}
}

func requestID() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return "unknown"
	}
	return id
}

const (
	communityLevelDescription = "Community hierarchy level (0 is the coarsest, higher means smaller communities). Default: 2"
	responseTypeDescription   = "Format of the response, e.g. \"Multiple Paragraphs\", \"Single Paragraph\", \"List of 3-7 Points\""
)

func searchTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithNumber("community_level",
			mcp.Description(communityLevelDescription),
		),
		mcp.WithString("response_type",
			mcp.Description(responseTypeDescription),
		),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
}

// Definitions returns the schema of every tool in registration order.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		searchTool(ToolSearchKnowledgeGraph,
			"Search the GraphRAG knowledge graph. Routes to local (entity-focused) or global (thematic) search based on search_type.",
			mcp.WithString("search_type",
				mcp.Description("\"local\" for entity-focused or \"global\" for thematic search. Default: local"),
				mcp.Enum("local", "global"),
			),
		),
		searchTool(ToolLocalSearch,
			"Entity-focused search. Best for specific questions about entities and relationships, e.g. \"Who leads Project Alpha?\". Returns the answer with the source documents it cites."),
		searchTool(ToolGlobalSearch,
			"Thematic search across the whole knowledge graph using community reports. Best for broad questions, e.g. \"What are the main projects?\". Does not return document-level sources."),
		searchTool(ToolDriftSearch,
			"DRIFT search: starts from community reports and drills into local entity context. Best for questions that need both breadth and specific detail."),
		searchTool(ToolBasicSearch,
			"Plain vector search over text units without graph reasoning. Best for finding a specific passage."),
		mcp.NewTool(ToolListEntities,
			mcp.WithDescription("List entities from the knowledge graph, optionally filtered by type."),
			mcp.WithString("entity_type",
				mcp.Description("Filter by type (e.g. \"person\", \"organization\", \"project\")"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entities to return. Default: 10"),
			),
		),
		mcp.NewTool(ToolGetEntity,
			mcp.WithDescription("Get details about a specific entity. Names match case-insensitively and partially."),
			mcp.WithString("entity_name",
				mcp.Required(),
				mcp.Description("Name of the entity to look up"),
			),
		),
		mcp.NewTool(ToolGraphStats,
			mcp.WithDescription("Return row counts of the loaded knowledge graph and its entity types."),
		),
	}
}
