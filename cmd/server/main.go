package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristofima/maf-graphrag-series/internal/config"
	"github.com/cristofima/maf-graphrag-series/internal/server"
	"github.com/cristofima/maf-graphrag-series/internal/storage"
	"github.com/cristofima/maf-graphrag-series/internal/tools"
	"github.com/cristofima/maf-graphrag-series/internal/util"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"
	"github.com/cristofima/maf-graphrag-series/pkg/logger/console"
	"github.com/cristofima/maf-graphrag-series/pkg/search/remote"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	util.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{}))
		logger.Fatal("Invalid configuration", "err", err)
	}

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
		Prefix: "graphrag-mcp",
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("Server failed", "err", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.S3.Enabled() {
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return err
		}
		n, err := storage.SyncArtifacts(ctx, client, cfg.S3.Bucket, cfg.S3.Prefix, cfg.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("Synced graph artifacts from S3", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix, "files", n)
	}

	cache := graph.NewCache(graph.LoadOptions{Dir: cfg.OutputDir, Validate: true})
	if _, err := cache.Get(ctx); err != nil {
		// Tools report the missing graph per call; the server still starts.
		logger.Warn("Knowledge graph not loaded", "dir", cfg.OutputDir, "err", err)
	}

	engine := remote.NewClient(cfg.SearchURL,
		remote.WithTimeout(cfg.SearchTimeout),
		remote.WithRetries(cfg.SearchMaxRetries, remote.DefaultBackoff),
		remote.WithAPIKey(cfg.SearchAPIKey),
	)

	deps := &tools.Dependencies{
		Graph:    cache,
		Engine:   engine,
		Defaults: cfg.SearchOptions(),
	}
	mcp := server.NewMCPServer(cfg, deps)

	if cfg.Transport == "stdio" {
		logger.Info("Serving MCP over stdio", "output_dir", cfg.OutputDir)
		return mcpserver.ServeStdio(mcp)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg, server.New(cfg, mcp, cache))
	})
	if cfg.Watch {
		g.Go(func() error {
			if err := cache.Watch(gctx); err != nil {
				logger.Warn("Artifact watcher disabled", "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}
