// Package pipelinetest provides in-memory collaborators for exercising the
// pipeline without a vector store or a model server.
package pipelinetest

import (
	"context"
	"sync"

	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/llm"
	"juris-rag-be/pkg/rag/citation"
	ragcontext "juris-rag-be/pkg/rag/context"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/rag/response"
	"juris-rag-be/pkg/rag/search"
	"juris-rag-be/pkg/vectorindex"
)

type Index struct {
	mu    sync.Mutex
	Hits  []vectorindex.Hit
	Err   error
	Panic bool
	Calls int
}

func (f *Index) Search(ctx context.Context, text string, limit int, filter vectorindex.Filter) ([]vectorindex.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Panic {
		panic("index exploded")
	}
	return f.Hits, f.Err
}

type LLM struct {
	mu      sync.Mutex
	Reply   string
	Finish  string
	Err     error
	Calls   int
	Prompts []string
}

func (f *LLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	for _, m := range history {
		f.Prompts = append(f.Prompts, m.Content)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	finish := f.Finish
	if finish == "" {
		finish = llm.FinishStop
	}
	return &llm.Completion{Content: f.Reply, FinishReason: finish, PromptTokens: 500, CompletionTokens: 80}, nil
}

// New wires a pipeline with default component settings around the fakes.
func New(idx vectorindex.Index, model llm.LLMProvider) *pipeline.Pipeline {
	log := logger.NewNopLogger()
	return pipeline.New(
		query.NewAnalyzer(nil, nil),
		search.NewOrchestrator(idx, search.DefaultConfig(), log),
		ragcontext.NewAssembler(ragcontext.DefaultConfig(), nil),
		response.NewSynthesizer(model, response.DefaultConfig(), log),
		citation.NewResolver(nil),
		pipeline.DefaultTopK,
		log,
	)
}
