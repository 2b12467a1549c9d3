package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cristofima/maf-graphrag-series/internal/config"
	mid "github.com/cristofima/maf-graphrag-series/internal/server/middleware"
	"github.com/cristofima/maf-graphrag-series/internal/tools"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 10 * time.Second

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewMCPServer creates the MCP server with every GraphRAG tool registered.
func NewMCPServer(cfg *config.Config, deps *tools.Dependencies) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	tools.RegisterAll(s, deps)
	return s
}

// New builds the echo instance that hosts the MCP transports and the HTTP API.
func New(cfg *config.Config, mcp *mcpserver.MCPServer, g tools.BundleSource) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(&mid.App{
		Graph:     g,
		OutputDir: cfg.OutputDir,
		APIKey:    cfg.APIKey,
	}))
	e.Use(middleware.CORS())
	e.Use(requestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e, cfg, mcp)
	return e
}

// Run serves e on the configured address until ctx is done, then shuts down
// gracefully.
func Run(ctx context.Context, cfg *config.Config, e *echo.Echo) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", cfg.Address(), "mcp", cfg.ServerURL()+"/mcp", "sse", cfg.ServerURL()+"/sse")
		if err := e.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// requestLogger routes echo's request log through the logger facade.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warn("Request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "err", v.Error)
				return nil
			}
			logger.Debug("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})
}
