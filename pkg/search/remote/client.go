// Package remote talks to a GraphRAG query sidecar over HTTP. The sidecar owns
// the actual retrieval (embeddings, map-reduce, LLM calls); this client only
// ships the query and decodes the answer and its context tables.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cristofima/maf-graphrag-series/internal/util"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"
	"github.com/cristofima/maf-graphrag-series/pkg/search"
)

const (
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// Client implements search.Engine against a sidecar.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries sets how many attempts are made and the initial backoff.
func WithRetries(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a sidecar client for baseURL, e.g. "http://localhost:8010".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ search.Engine = (*Client)(nil)

type searchRequest struct {
	Query                     string `json:"query"`
	CommunityLevel            int    `json:"community_level"`
	ResponseType              string `json:"response_type"`
	DynamicCommunitySelection bool   `json:"dynamic_community_selection"`
	OutputDir                 string `json:"output_dir,omitempty"`
}

type searchResponse struct {
	Response json.RawMessage            `json:"response"`
	Context  map[string]json.RawMessage `json:"context"`
}

// StatusError is returned for non-2xx sidecar responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search service returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func (c *Client) LocalSearch(ctx context.Context, query string, bundle *graph.Bundle, opts search.Options) (*search.Result, error) {
	return c.search(ctx, search.Local, query, bundle, opts)
}

func (c *Client) GlobalSearch(ctx context.Context, query string, bundle *graph.Bundle, opts search.Options) (*search.Result, error) {
	return c.search(ctx, search.Global, query, bundle, opts)
}

func (c *Client) DriftSearch(ctx context.Context, query string, bundle *graph.Bundle, opts search.Options) (*search.Result, error) {
	return c.search(ctx, search.Drift, query, bundle, opts)
}

func (c *Client) BasicSearch(ctx context.Context, query string, bundle *graph.Bundle, opts search.Options) (*search.Result, error) {
	return c.search(ctx, search.Basic, query, bundle, opts)
}

func (c *Client) search(ctx context.Context, method search.Method, query string, bundle *graph.Bundle, opts search.Options) (*search.Result, error) {
	reqBody := searchRequest{
		Query:                     query,
		CommunityLevel:            opts.CommunityLevel,
		ResponseType:              opts.ResponseType,
		DynamicCommunitySelection: opts.DynamicCommunitySelection,
	}
	if bundle != nil {
		reqBody.OutputDir = bundle.Dir
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/search/%s", c.baseURL, method)
	attempt := 0
	return util.RetryWithContext(ctx, c.maxRetries, c.backoff, func(ctx context.Context) (*search.Result, error) {
		attempt++
		res, err := c.do(ctx, url, body)
		if err == nil {
			return res, nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, util.Permanent(err)
		}
		logger.Warn("Search request failed", "method", method, "attempt", attempt, "err", err)
		return nil, err
	})
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*search.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, util.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	res, err := DecodeResult(raw)
	if err != nil {
		return nil, util.Permanent(err)
	}
	return res, nil
}

// DecodeResult parses a sidecar response body.
func DecodeResult(raw []byte) (*search.Result, error) {
	var sr searchResponse
	if err := unmarshalNumbers(raw, &sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	answer, err := decodeAnswer(sr.Response)
	if err != nil {
		return nil, err
	}

	ctxTables := make(search.Context, len(sr.Context))
	for name, rawTable := range sr.Context {
		t, err := DecodeTable(rawTable)
		if err != nil {
			return nil, fmt.Errorf("decode context table %q: %w", name, err)
		}
		if t != nil {
			ctxTables[name] = t
		}
	}

	return &search.Result{Answer: answer, Context: ctxTables}, nil
}

// The answer is normally a string; structured answers are kept as JSON text.
func decodeAnswer(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	return string(raw), nil
}

type splitTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// DecodeTable accepts a context table either as an array of records or in
// pandas "split" orientation ({"columns": [...], "data": [[...]]}). null
// yields a nil table.
func DecodeTable(raw json.RawMessage) (*graph.Table, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var records []map[string]any
		if err := unmarshalNumbers(trimmed, &records); err != nil {
			return nil, err
		}
		return recordsTable(trimmed, records)
	case '{':
		var st splitTable
		if err := unmarshalNumbers(trimmed, &st); err != nil {
			return nil, err
		}
		t := graph.NewTable(st.Columns)
		t.Rows = make([]graph.Row, 0, len(st.Data))
		for i, values := range st.Data {
			if len(values) != len(st.Columns) {
				return nil, fmt.Errorf("row %d has %d values for %d columns", i, len(values), len(st.Columns))
			}
			row := make(graph.Row, len(st.Columns))
			for j, col := range st.Columns {
				row[col] = values[j]
			}
			t.Rows = append(t.Rows, row)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported table encoding")
	}
}

// Column order follows the first record's keys as they appear in the JSON
// text; keys first seen in later records are appended.
func recordsTable(raw []byte, records []map[string]any) (*graph.Table, error) {
	columns, err := recordColumns(raw)
	if err != nil {
		return nil, err
	}
	t := graph.NewTable(columns)
	t.Rows = make([]graph.Row, 0, len(records))
	for _, rec := range records {
		t.Rows = append(t.Rows, graph.Row(rec))
	}
	return t, nil
}

func recordColumns(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for dec.More() {
		if tok, err := dec.Token(); err != nil {
			return nil, err
		} else if tok != json.Delim('{') {
			return nil, fmt.Errorf("expected record object")
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := tok.(string)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	}
	return columns, nil
}

func unmarshalNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
