package graph

import (
	"fmt"
	"strings"
)

// ArtifactExt is the file extension of every artifact written by the indexer.
const ArtifactExt = ".parquet"

// Artifact names as produced by the GraphRAG 3.x indexer (no create_final_ prefix).
const (
	ArtifactEntities         = "entities"
	ArtifactRelationships    = "relationships"
	ArtifactCommunities      = "communities"
	ArtifactCommunityReports = "community_reports"
	ArtifactTextUnits        = "text_units"
	ArtifactDocuments        = "documents"
	ArtifactCovariates       = "covariates"
)

// RequiredArtifacts are needed by both local and global search.
var RequiredArtifacts = []string{
	ArtifactEntities,
	ArtifactRelationships,
	ArtifactCommunities,
	ArtifactCommunityReports,
	ArtifactTextUnits,
}

// OptionalArtifacts are loaded only when present on disk.
var OptionalArtifacts = []string{
	ArtifactDocuments,
	ArtifactCovariates,
}

// FileName returns the on-disk file name of an artifact.
func FileName(artifact string) string {
	return artifact + ArtifactExt
}

// Bundle holds every artifact needed to answer one search query. It is built
// once by Load and never mutated afterwards, so a single Bundle may be read
// from several goroutines.
//
// Documents and Covariates are nil when their files are absent.
type Bundle struct {
	Dir string

	Entities         *Table
	Relationships    *Table
	Communities      *Table
	CommunityReports *Table
	TextUnits        *Table
	Documents        *Table
	Covariates       *Table
}

// Stats summarises the row counts of a bundle. Absent optional tables count
// as zero rows; HasDocuments and HasCovariates tell the two apart.
type Stats struct {
	Entities         int      `json:"entities"`
	Relationships    int      `json:"relationships"`
	Communities      int      `json:"communities"`
	CommunityReports int      `json:"community_reports"`
	TextUnits        int      `json:"text_units"`
	Documents        int      `json:"documents"`
	Covariates       int      `json:"covariates"`
	HasDocuments     bool     `json:"has_documents"`
	HasCovariates    bool     `json:"has_covariates"`
	EntityTypes      []string `json:"entity_types"`
}

// EntityCount returns the number of extracted entities.
func (b *Bundle) EntityCount() int {
	return b.Entities.Len()
}

// RelationshipCount returns the number of entity relationships.
func (b *Bundle) RelationshipCount() int {
	return b.Relationships.Len()
}

// CommunityCount returns the number of community assignments.
func (b *Bundle) CommunityCount() int {
	return b.Communities.Len()
}

var entityNameColumns = []string{"name", "title"}

// ListEntities returns up to limit entity names in table order. The name
// column is probed as "name" then "title"; when neither exists the result is
// empty.
func (b *Bundle) ListEntities(limit int) []string {
	col, ok := b.Entities.FirstColumn(entityNameColumns...)
	if !ok || limit <= 0 {
		return []string{}
	}

	names := make([]string, 0, min(limit, b.Entities.Len()))
	for _, row := range b.Entities.Rows {
		if len(names) >= limit {
			break
		}
		if name, ok := row.String(col); ok {
			names = append(names, name)
		}
	}
	return names
}

// ListEntityTypes returns the distinct entity types in order of first
// appearance.
func (b *Bundle) ListEntityTypes() []string {
	if !b.Entities.HasColumn("type") {
		return []string{}
	}

	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, row := range b.Entities.Rows {
		t, ok := row.String("type")
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}

// Stats returns the row counts of every table in the bundle.
func (b *Bundle) Stats() Stats {
	return Stats{
		Entities:         b.Entities.Len(),
		Relationships:    b.Relationships.Len(),
		Communities:      b.Communities.Len(),
		CommunityReports: b.CommunityReports.Len(),
		TextUnits:        b.TextUnits.Len(),
		Documents:        b.Documents.Len(),
		Covariates:       b.Covariates.Len(),
		HasDocuments:     b.Documents != nil,
		HasCovariates:    b.Covariates != nil,
		EntityTypes:      b.ListEntityTypes(),
	}
}

func (b *Bundle) String() string {
	s := b.Stats()
	return fmt.Sprintf(
		"Bundle(entities=%d, relationships=%d, communities=%d, community_reports=%d, text_units=%d, documents=%d, covariates=%d)",
		s.Entities, s.Relationships, s.Communities, s.CommunityReports, s.TextUnits, s.Documents, s.Covariates,
	)
}

// Entity is the display form of one entities row.
type Entity struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	CommunityIDs []string `json:"community_ids"`
}

// EntityFilter narrows FindEntities. Name takes precedence over Type; an
// empty filter matches every entity.
type EntityFilter struct {
	Name  string
	Type  string
	Limit int
}

// FindEntities returns up to filter.Limit matching entities together with the
// total number of matches. Name matches are case-insensitive substring
// matches, type matches are case-insensitive equality.
func (b *Bundle) FindEntities(filter EntityFilter) ([]Entity, int) {
	nameCol, hasName := b.Entities.FirstColumn("title", "name")
	name := strings.ToLower(filter.Name)
	typ := strings.ToLower(filter.Type)

	matches := make([]Entity, 0)
	total := 0
	for _, row := range b.Entities.Rows {
		e := toEntity(row, nameCol, hasName)

		switch {
		case name != "":
			if !hasName || !strings.Contains(strings.ToLower(e.Name), name) {
				continue
			}
		case typ != "":
			if _, ok := row.String("type"); !ok || strings.ToLower(e.Type) != typ {
				continue
			}
		}

		total++
		if filter.Limit <= 0 || len(matches) < filter.Limit {
			matches = append(matches, e)
		}
	}
	return matches, total
}

func toEntity(row Row, nameCol string, hasName bool) Entity {
	e := Entity{
		Type:         "unknown",
		Description:  "No description available",
		CommunityIDs: AsStrings(row.Get("community_ids")),
	}
	if hasName {
		e.Name, _ = row.String(nameCol)
	}
	if t, ok := row.String("type"); ok {
		e.Type = t
	}
	if d, ok := row.String("description"); ok {
		e.Description = d
	}
	return e
}
