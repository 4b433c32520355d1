package embedding

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	Client     *api.Client
	Model      string
	MaxRetries int
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	host := envconfig.Host()
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
			host = u
		}
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		Client:     api.NewClient(host, &http.Client{Timeout: 30 * time.Second}),
		Model:      model,
		MaxRetries: 2,
	}
}

func (p *OllamaProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	var (
		resp *api.EmbeddingResponse
		err  error
	)
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		resp, err = p.Client.Embeddings(ctx, &api.EmbeddingRequest{
			Model:  p.Model,
			Prompt: text,
		})
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed after %d retries: %w", p.MaxRetries, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding for model %s", p.Model)
	}

	values := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		values[i] = float32(v)
	}

	// Cosine distance in pgvector expects unit vectors.
	return normalizeVector(values), nil
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
