// Package embedding generates and caches vector embeddings for customer
// profiles using an OpenAI-compatible API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Ramsey-B/clover/pkg/metrics"
)

// Embedder turns text into a vector
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Config holds the embedding provider settings
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// OpenAIEmbedder is an Embedder backed by an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     ectologger.Logger
}

// NewOpenAIEmbedder creates an embedding provider
func NewOpenAIEmbedder(cfg Config, logger ectologger.Logger) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     logger,
	}
}

// EmbedText generates an embedding for a single text string
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		return nil, fmt.Errorf("empty embedding response for model %s", e.model)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "success").Inc()
	metrics.EmbeddingDuration.WithLabelValues(string(e.model)).Observe(time.Since(start).Seconds())

	return resp.Data[0].Embedding, nil
}

// parseAPIError extracts a readable message from the provider error
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return fmt.Errorf("embedding request failed: %w", err)
}
