package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"juris-rag-be/pkg/llm"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

type OllamaProvider struct {
	Client    *api.Client
	ModelName string
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

// NewOllamaProvider builds a client for baseURL, falling back to OLLAMA_HOST
// when baseURL is empty or unparsable.
func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		Client:    api.NewClient(resolveHost(baseURL), &http.Client{Timeout: 120 * time.Second}),
		ModelName: modelName,
	}
}

func resolveHost(baseURL string) *url.URL {
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
			return u
		}
	}
	return envconfig.Host()
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := &llm.Options{
		Temperature: 0.1,
		MaxTokens:   1024,
	}
	for _, opt := range opts {
		opt(options)
	}

	messages := make([]api.Message, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = api.Message{Role: role, Content: msg.Content}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}

	var (
		content strings.Builder
		result  llm.Completion
	)
	err := o.Client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			result.FinishReason = resp.DoneReason
			result.PromptTokens = resp.PromptEvalCount
			result.CompletionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	result.Content = content.String()
	if result.FinishReason == "" {
		result.FinishReason = llm.FinishStop
	}
	return &result, nil
}
