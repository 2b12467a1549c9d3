package tools

import (
	"errors"

	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/source"
)

const (
	NotIndexedMessage  = "Knowledge graph not found. Run indexing first: graphrag index --root <project root>"
	UnreadableMessage  = "Knowledge graph artifacts are unreadable. Re-run indexing with a matching GraphRAG version"
	EntityLookupType   = "entity_lookup"
	invalidTypeMessage = "Invalid search_type: %s. Must be 'local' or 'global'"
)

// SearchContext summarises what local, drift and basic search consulted.
type SearchContext struct {
	EntitiesUsed      int      `json:"entities_used"`
	RelationshipsUsed int      `json:"relationships_used"`
	ReportsUsed       int      `json:"reports_used"`
	SourcesUsed       int      `json:"sources_used"`
	Documents         []string `json:"documents,omitempty"`
}

// SearchResponse is the result of local, drift and basic search.
type SearchResponse struct {
	Answer     string                  `json:"answer"`
	Context    SearchContext           `json:"context"`
	Sources    []source.ResolvedSource `json:"sources"`
	SearchType string                  `json:"search_type"`
}

type GlobalContext struct {
	CommunitiesAnalyzed int `json:"communities_analyzed"`
}

// GlobalResponse is the result of global search. Global search reads
// community reports only, so it carries no text unit sources.
type GlobalResponse struct {
	Answer     string        `json:"answer"`
	Context    GlobalContext `json:"context"`
	SearchType string        `json:"search_type"`
}

// EntityResponse is the result of list_entities and get_entity.
type EntityResponse struct {
	Entities       []graph.Entity `json:"entities"`
	TotalFound     int            `json:"total_found"`
	Returned       int            `json:"returned"`
	AvailableTypes []string       `json:"available_types"`
	QueryType      string         `json:"query_type"`
}

// StatsResponse is the result of get_graph_stats.
type StatsResponse struct {
	graph.Stats
	OutputDir string `json:"output_dir"`
}

// ErrorResponse is returned by every tool on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Query      string `json:"query,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
}

// loadFailure maps bundle load errors to their user-facing message. It
// returns nil for errors that are not artifact problems.
func loadFailure(err error) *ErrorResponse {
	switch {
	case graph.IsNotIndexed(err):
		return &ErrorResponse{Error: NotIndexedMessage, Details: err.Error()}
	case errors.Is(err, graph.ErrCorruptArtifact):
		return &ErrorResponse{Error: UnreadableMessage, Details: err.Error()}
	default:
		return nil
	}
}
