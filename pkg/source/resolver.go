// Package source turns the citation table of a search response into
// human-readable provenance.
package source

import (
	"strings"

	"github.com/cristofima/maf-graphrag-series/internal/util"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"
)

const (
	// PreviewLength is the number of runes kept from a cited passage.
	PreviewLength = 200
	// Unknown is the document of a citation that cannot be attributed.
	Unknown = "unknown"
)

// ResolvedSource is the provenance of one cited text unit. An empty Document
// means attribution was unavailable for the whole response, which is
// different from Unknown.
type ResolvedSource struct {
	TextUnitID  string `json:"text_unit_id"`
	Document    string `json:"document,omitempty"`
	TextPreview string `json:"text_preview,omitempty"`
}

// Attributed reports whether a document title was found for the source.
func (s ResolvedSource) Attributed() bool {
	return s.Document != "" && s.Document != Unknown
}

// Resolve maps every citation row ({id, text}) to a ResolvedSource, in input
// order. Document attribution is asserted only when both the text unit and the
// document lookups could be built; otherwise every entry carries just its id
// and preview. Malformed ids degrade to Unknown. Resolve never fails.
func Resolve(citations *graph.Table, bundle *graph.Bundle) []ResolvedSource {
	if citations.Empty() || !citations.HasColumn("id") {
		return []ResolvedSource{}
	}

	var unitToDoc map[int64]string
	var docToTitle map[string]string
	if bundle != nil {
		unitToDoc = textUnitDocuments(bundle.TextUnits)
		docToTitle = documentTitles(bundle.Documents)
	}
	mapped := len(unitToDoc) > 0 && len(docToTitle) > 0

	out := make([]ResolvedSource, 0, citations.Len())
	for _, row := range citations.Rows {
		id, _ := row.String("id")
		text, _ := row.String("text")

		src := ResolvedSource{
			TextUnitID:  id,
			TextPreview: util.Truncate(text, PreviewLength),
		}
		if mapped {
			src.Document = attribute(id, unitToDoc, docToTitle)
		}
		out = append(out, src)
	}
	return out
}

func attribute(id string, unitToDoc map[int64]string, docToTitle map[string]string) string {
	n, ok := graph.AsInt(id)
	if !ok {
		return Unknown
	}
	docID, ok := unitToDoc[n]
	if !ok {
		return Unknown
	}
	title, ok := docToTitle[docID]
	if !ok {
		return Unknown
	}
	return title
}

func textUnitDocuments(units *graph.Table) map[int64]string {
	m := make(map[int64]string)
	if !units.HasColumn("human_readable_id") || !units.HasColumn("document_id") {
		return m
	}
	for _, row := range units.Rows {
		n, ok := graph.AsInt(row.Get("human_readable_id"))
		if !ok {
			continue
		}
		doc, ok := row.String("document_id")
		if !ok || doc == "" {
			continue
		}
		m[n] = doc
	}
	return m
}

func documentTitles(docs *graph.Table) map[string]string {
	m := make(map[string]string)
	if !docs.HasColumn("id") || !docs.HasColumn("title") {
		return m
	}
	for _, row := range docs.Rows {
		id, ok := row.String("id")
		if !ok || id == "" {
			continue
		}
		title, ok := row.String("title")
		if !ok || title == "" {
			continue
		}
		m[id] = title
	}
	return m
}

// UniqueDocuments returns the distinct attributed document titles in order of
// first appearance.
func UniqueDocuments(sources []ResolvedSource) []string {
	seen := make(map[string]struct{})
	docs := make([]string, 0)
	for _, s := range sources {
		if !s.Attributed() {
			continue
		}
		if _, dup := seen[s.Document]; dup {
			continue
		}
		seen[s.Document] = struct{}{}
		docs = append(docs, s.Document)
	}
	return docs
}

// Summary counts resolved sources by attribution outcome.
type Summary struct {
	Attributed   int
	Unknown      int
	Unattributed int
}

// Summarize tallies sources. Unattributed counts entries with no document at
// all, i.e. no mapping was available.
func Summarize(sources []ResolvedSource) Summary {
	var s Summary
	for _, src := range sources {
		switch {
		case src.Document == "":
			s.Unattributed++
		case strings.EqualFold(src.Document, Unknown):
			s.Unknown++
		default:
			s.Attributed++
		}
	}
	return s
}

// Total returns the number of summarised sources.
func (s Summary) Total() int {
	return s.Attributed + s.Unknown + s.Unattributed
}
