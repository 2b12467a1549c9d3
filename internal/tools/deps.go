// Package tools registers the GraphRAG MCP tools with dependency injection.
package tools

import (
	"context"

	"github.com/cristofima/maf-graphrag-series/internal/metrics"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/search"
)

// BundleSource hands out the graph bundle for one tool call. *graph.Cache is
// the production implementation.
type BundleSource interface {
	Get(ctx context.Context) (*graph.Bundle, error)
}

// Dependencies holds everything the tools need.
type Dependencies struct {
	Graph  BundleSource
	Engine search.Engine

	// Defaults fills community_level and response_type when a caller omits them.
	Defaults search.Options
}

func (d *Dependencies) bundle(ctx context.Context) (*graph.Bundle, error) {
	b, err := d.Graph.Get(ctx)
	metrics.ObserveBundleLoad(err)
	return b, err
}

func (d *Dependencies) defaults() search.Options {
	opts := d.Defaults
	if opts.ResponseType == "" {
		opts.ResponseType = search.DefaultResponseType
	}
	return opts
}
