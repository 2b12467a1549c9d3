package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const localResponse = `{
	"response": "Dr. Emily Harrison leads Project Alpha.",
	"context": {
		"entities": [{"id": "e1", "entity": "EMILY HARRISON"}, {"id": "e2", "entity": "PROJECT ALPHA", "rank": 3}],
		"relationships": {"columns": ["id", "source", "target"], "data": [["r1", "EMILY HARRISON", "PROJECT ALPHA"]]},
		"sources": [{"id": "7", "text": "Emily leads Alpha."}],
		"reports": null
	}
}`

func TestClient_LocalSearch(t *testing.T) {
	var got searchRequest
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, localResponse)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithAPIKey("secret"))
	bundle := &graph.Bundle{Dir: "/data/output"}
	res, err := c.LocalSearch(context.Background(), "Who leads Project Alpha?", bundle, search.Options{
		CommunityLevel: 0,
		ResponseType:   "Single Paragraph",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/search/local", path)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "Who leads Project Alpha?", got.Query)
	assert.Equal(t, 0, got.CommunityLevel)
	assert.Equal(t, "Single Paragraph", got.ResponseType)
	assert.Equal(t, "/data/output", got.OutputDir)

	assert.Equal(t, "Dr. Emily Harrison leads Project Alpha.", res.Answer)
	assert.Equal(t, 2, res.Context.Count(search.ContextEntities))
	assert.Equal(t, 1, res.Context.Count(search.ContextRelationships))
	assert.Equal(t, 1, res.Context.Count(search.ContextSources))
	assert.Equal(t, 0, res.Context.Count(search.ContextReports))
	assert.Nil(t, res.Context.Table(search.ContextReports))

	entities := res.Context.Table(search.ContextEntities)
	assert.Equal(t, []string{"id", "entity", "rank"}, entities.Columns)
	rank, ok := graph.AsInt(entities.Rows[1].Get("rank"))
	require.True(t, ok)
	assert.Equal(t, int64(3), rank)

	rels := res.Context.Table(search.ContextRelationships)
	target, _ := rels.Rows[0].String("target")
	assert.Equal(t, "PROJECT ALPHA", target)
}

func TestClient_GlobalSendsDynamicSelection(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search/global", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"response": "themes", "context": {"reports": [{"id": "1"}, {"id": "2"}]}}`)
	}))
	defer srv.Close()

	opts := search.DefaultOptions()
	opts.DynamicCommunitySelection = true
	res, err := NewClient(srv.URL).GlobalSearch(context.Background(), "themes?", nil, opts)
	require.NoError(t, err)
	assert.True(t, got.DynamicCommunitySelection)
	assert.Equal(t, search.DefaultCommunityLevel, got.CommunityLevel)
	assert.Equal(t, 2, res.Context.Count(search.ContextReports))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"response": "ok", "context": {}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	res, err := c.DriftSearch(context.Background(), "q", nil, search.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(5, time.Millisecond))
	_, err := c.BasicSearch(context.Background(), "q", nil, search.DefaultOptions())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Equal(t, "bad query", se.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithRetries(2, time.Millisecond)).LocalSearch(context.Background(), "q", nil, search.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDecodeTable(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantLen int
		wantErr bool
	}{
		{name: "null", raw: "null", wantNil: true},
		{name: "empty records", raw: "[]", wantLen: 0},
		{name: "records", raw: `[{"id": 1}, {"id": 2, "text": "x"}]`, wantLen: 2},
		{name: "split", raw: `{"columns": ["id"], "data": [[1], [2], [3]]}`, wantLen: 3},
		{name: "split ragged", raw: `{"columns": ["id", "text"], "data": [[1]]}`, wantErr: true},
		{name: "scalar", raw: `"nope"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := DecodeTable(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, tbl)
				return
			}
			require.NotNil(t, tbl)
			assert.Equal(t, tt.wantLen, tbl.Len())
		})
	}
}

func TestDecodeTable_RecordColumnOrder(t *testing.T) {
	tbl, err := DecodeTable(json.RawMessage(`[{"b": 1, "a": {"nested": true}}, {"c": [1, 2], "a": 2}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, tbl.Columns)
}

func TestDecodeResult_StructuredAnswer(t *testing.T) {
	res, err := DecodeResult([]byte(`{"response": {"points": [1]}, "context": {}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"points": [1]}`, res.Answer)
}
