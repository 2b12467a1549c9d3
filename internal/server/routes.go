package server

import (
	"github.com/cristofima/maf-graphrag-series/internal/config"
	"github.com/cristofima/maf-graphrag-series/internal/server/middleware"
	"github.com/cristofima/maf-graphrag-series/internal/server/routes"

	"github.com/labstack/echo/v4"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MCPPath     = "/mcp"
	SSEPath     = "/sse"
	MessagePath = "/message"
)

func RegisterRoutes(e *echo.Echo, cfg *config.Config, mcp *mcpserver.MCPServer) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// MCP transports
	streamable := echo.WrapHandler(mcpserver.NewStreamableHTTPServer(mcp))
	sse := echo.WrapHandler(mcpserver.NewSSEServer(mcp,
		mcpserver.WithBaseURL(cfg.ServerURL()),
		mcpserver.WithSSEEndpoint(SSEPath),
		mcpserver.WithMessageEndpoint(MessagePath),
	))

	e.Any(MCPPath, streamable, middleware.AuthMiddleware)
	e.GET(SSEPath, sse, middleware.AuthMiddleware)
	e.POST(MessagePath, sse, middleware.AuthMiddleware)

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)
	apiRoutes.GET("/graph/stats", routes.GetGraphStatsHandler)
	apiRoutes.GET("/graph/entities", routes.GetEntitiesHandler)
}
