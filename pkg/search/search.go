// Package search defines the boundary to the external GraphRAG query engine.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/cristofima/maf-graphrag-series/pkg/graph"
)

// Method names one of the engine's query strategies.
type Method string

const (
	Local  Method = "local"
	Global Method = "global"
	Drift  Method = "drift"
	Basic  Method = "basic"
)

// Display returns the capitalised method name used in user-facing messages.
func (m Method) Display() string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseMethod accepts a method name in any case.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case Local, Global, Drift, Basic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown search method %q", s)
	}
}

// Context table keys returned by the engine.
const (
	ContextEntities      = "entities"
	ContextRelationships = "relationships"
	ContextReports       = "reports"
	ContextSources       = "sources"
)

const (
	DefaultCommunityLevel = 2
	DefaultResponseType   = "Multiple Paragraphs"
)

// Options tunes one engine call.
type Options struct {
	// CommunityLevel selects the Leiden hierarchy level; 0 is the coarsest.
	CommunityLevel int
	ResponseType   string
	// DynamicCommunitySelection lets global search prune irrelevant communities.
	DynamicCommunitySelection bool
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		CommunityLevel: DefaultCommunityLevel,
		ResponseType:   DefaultResponseType,
	}
}

// Context maps context table names to the tables the engine used.
type Context map[string]*graph.Table

// Table returns the named context table, nil when it is absent.
func (c Context) Table(name string) *graph.Table {
	if c == nil {
		return nil
	}
	return c[name]
}

// Count returns the row count of the named table. An absent table counts as 0.
func (c Context) Count(name string) int {
	return c.Table(name).Len()
}

// Result is the answer of one engine call.
type Result struct {
	Answer  string
	Context Context
}

// Engine runs queries against a loaded graph bundle.
type Engine interface {
	LocalSearch(ctx context.Context, query string, bundle *graph.Bundle, opts Options) (*Result, error)
	GlobalSearch(ctx context.Context, query string, bundle *graph.Bundle, opts Options) (*Result, error)
	DriftSearch(ctx context.Context, query string, bundle *graph.Bundle, opts Options) (*Result, error)
	BasicSearch(ctx context.Context, query string, bundle *graph.Bundle, opts Options) (*Result, error)
}

// Run dispatches to the Engine method matching m.
func Run(ctx context.Context, e Engine, m Method, query string, bundle *graph.Bundle, opts Options) (*Result, error) {
	switch m {
	case Local:
		return e.LocalSearch(ctx, query, bundle, opts)
	case Global:
		return e.GlobalSearch(ctx, query, bundle, opts)
	case Drift:
		return e.DriftSearch(ctx, query, bundle, opts)
	case Basic:
		return e.BasicSearch(ctx, query, bundle, opts)
	default:
		return nil, fmt.Errorf("unknown search method %q", m)
	}
}
