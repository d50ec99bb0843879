package openai

import (
	"sync"

	"github.com/fablemap/fablemap/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ExtractionOpenAIClient implements ai.Client against an OpenAI
// compatible chat completions endpoint.
//
// An ExtractionOpenAIClient should be created using NewExtractionOpenAIClient.
type ExtractionOpenAIClient struct {
	extractionModel string

	chatURL string
	chatKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewExtractionOpenAIClientParams defines the configuration parameters
// for creating a new ExtractionOpenAIClient. ChatURL may be empty to
// use the default OpenAI endpoint.
type NewExtractionOpenAIClientParams struct {
	ExtractionModel string

	ChatURL string
	ChatKey string
}

// NewExtractionOpenAIClient creates and returns a new client configured
// with the provided parameters.
func NewExtractionOpenAIClient(
	params NewExtractionOpenAIClientParams,
) *ExtractionOpenAIClient {
	return &ExtractionOpenAIClient{
		extractionModel: params.ExtractionModel,

		chatURL: params.ChatURL,
		chatKey: params.ChatKey,

		ChatClient: newOpenaiClient(params.ChatURL, params.ChatKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}

func (c *ExtractionOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}

// ResetMetrics clears the accumulated usage metrics.
func (c *ExtractionOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the usage metrics accumulated since the last reset.
func (c *ExtractionOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	return c.metrics
}
