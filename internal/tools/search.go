package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cristofima/maf-graphrag-series/internal/metrics"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"
	"github.com/cristofima/maf-graphrag-series/pkg/search"
	"github.com/cristofima/maf-graphrag-series/pkg/source"
)

func (d *Dependencies) searchKnowledgeGraph(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	searchType := args.getString("search_type")
	if searchType == "" {
		searchType = string(search.Local)
	}

	switch strings.ToLower(searchType) {
	case string(search.Local):
		return d.localSearch(ctx, args, log)
	case string(search.Global):
		return d.globalSearch(ctx, args, log)
	default:
		return &ErrorResponse{Error: fmt.Sprintf(invalidTypeMessage, searchType)}, true
	}
}

func (d *Dependencies) localSearch(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	return d.sourcedSearch(ctx, search.Local, args, log)
}

func (d *Dependencies) driftSearch(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	return d.sourcedSearch(ctx, search.Drift, args, log)
}

func (d *Dependencies) basicSearch(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	return d.sourcedSearch(ctx, search.Basic, args, log)
}

func (d *Dependencies) globalSearch(ctx context.Context, args arguments, log *logger.Scoped) (any, bool) {
	query, opts, failure := d.searchArgs(args)
	if failure != nil {
		return failure, true
	}
	opts.DynamicCommunitySelection = true

	_, res, failure := d.run(ctx, search.Global, query, opts, log)
	if failure != nil {
		return failure, true
	}

	return &GlobalResponse{
		Answer: res.Answer,
		Context: GlobalContext{
			CommunitiesAnalyzed: res.Context.Count(search.ContextReports),
		},
		SearchType: string(search.Global),
	}, false
}

// sourcedSearch runs a method whose context carries text unit citations and
// resolves them to documents.
func (d *Dependencies) sourcedSearch(ctx context.Context, method search.Method, args arguments, log *logger.Scoped) (any, bool) {
	query, opts, failure := d.searchArgs(args)
	if failure != nil {
		return failure, true
	}

	bundle, res, failure := d.run(ctx, method, query, opts, log)
	if failure != nil {
		return failure, true
	}

	sources := source.Resolve(res.Context.Table(search.ContextSources), bundle)
	summary := source.Summarize(sources)
	metrics.ObserveSources(summary)
	log.Debug("Resolved sources",
		"attributed", summary.Attributed,
		"unknown", summary.Unknown,
		"unattributed", summary.Unattributed,
	)

	return &SearchResponse{
		Answer: res.Answer,
		Context: SearchContext{
			EntitiesUsed:      res.Context.Count(search.ContextEntities),
			RelationshipsUsed: res.Context.Count(search.ContextRelationships),
			ReportsUsed:       res.Context.Count(search.ContextReports),
			SourcesUsed:       res.Context.Count(search.ContextSources),
			Documents:         source.UniqueDocuments(sources),
		},
		Sources:    sources,
		SearchType: string(method),
	}, false
}

func (d *Dependencies) run(ctx context.Context, method search.Method, query string, opts search.Options, log *logger.Scoped) (*graph.Bundle, *search.Result, *ErrorResponse) {
	bundle, err := d.bundle(ctx)
	if err != nil {
		return nil, nil, d.bundleFailure(method, query, err, log)
	}

	res, err := search.Run(ctx, d.Engine, method, query, bundle, opts)
	if err != nil {
		log.Error("Search engine failed", "method", method, "err", err)
		return nil, nil, &ErrorResponse{Error: fmt.Sprintf("%s search failed: %v", method.Display(), err), Query: query}
	}
	return bundle, res, nil
}

func (d *Dependencies) bundleFailure(method search.Method, query string, err error, log *logger.Scoped) *ErrorResponse {
	log.Error("Failed to load knowledge graph", "err", err)
	if f := loadFailure(err); f != nil {
		return f
	}
	return &ErrorResponse{Error: fmt.Sprintf("%s search failed: %v", method.Display(), err), Query: query}
}

func (d *Dependencies) searchArgs(args arguments) (string, search.Options, *ErrorResponse) {
	opts := d.defaults()

	query := args.getString("query")
	if query == "" {
		return "", opts, &ErrorResponse{Error: "query is required"}
	}

	level, ok := args.getInt("community_level", opts.CommunityLevel)
	if !ok || level < 0 {
		return "", opts, &ErrorResponse{Error: "community_level must be a non-negative integer", Query: query}
	}
	opts.CommunityLevel = level

	if rt := args.getString("response_type"); rt != "" {
		opts.ResponseType = rt
	}
	return query, opts, nil
}
