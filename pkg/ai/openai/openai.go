package openai

import (
	"math"
	"net/http"
	"strings"
	"sync"

	"github.com/cristofima/maf-graphrag-series/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

const defaultMaxRounds = 10

// ChatClient is a tool-calling chat client for Azure OpenAI deployments and
// OpenAI-compatible endpoints.
//
// A ChatClient should be created using NewChatClient.
type ChatClient struct {
	model     string
	maxRounds int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	client openai.Client
}

// NewChatClientParams defines the configuration for NewChatClient.
//
// When BaseURL is empty, Endpoint and APIVersion address an Azure OpenAI
// resource and Model is the deployment name. Otherwise BaseURL is any
// OpenAI-compatible /v1 endpoint and Model is the model name.
type NewChatClientParams struct {
	Endpoint   string
	APIVersion string
	BaseURL    string
	APIKey     string
	Model      string
	MaxRounds  int
	MaxRetries int

	HTTPClient *http.Client
}

// NewChatClient creates and returns a new ChatClient.
//
// Example:
//
//	client := openai.NewChatClient(openai.NewChatClientParams{
//		Endpoint:   "https://my-resource.openai.azure.com",
//		APIVersion: "2024-10-21",
//		APIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
//		Model:      "gpt-4o",
//	})
func NewChatClient(params NewChatClientParams) *ChatClient {
	options := []option.RequestOption{}
	if params.BaseURL == "" {
		options = append(options,
			azure.WithEndpoint(strings.TrimRight(params.Endpoint, "/"), params.APIVersion),
			azure.WithAPIKey(params.APIKey),
		)
	} else {
		options = append(options,
			option.WithBaseURL(params.BaseURL),
			option.WithAPIKey(params.APIKey),
		)
	}
	if params.MaxRetries > 0 {
		options = append(options, option.WithMaxRetries(params.MaxRetries))
	}
	if params.HTTPClient != nil {
		options = append(options, option.WithHTTPClient(params.HTTPClient))
	}

	maxRounds := params.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}

	return &ChatClient{
		model:     params.Model,
		maxRounds: maxRounds,
		client:    openai.NewClient(options...),
	}
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *ChatClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *ChatClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *ChatClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
