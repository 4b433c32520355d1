package pipeline

import (
	"context"
	"fmt"
	"time"

	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/rag/citation"
	ragcontext "juris-rag-be/pkg/rag/context"
	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/rag/response"
	"juris-rag-be/pkg/rag/search"
	"juris-rag-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage names reported to the status callback, in emission order.
type Stage string

const (
	StageProcessing Stage = "processing"
	StageSearching  Stage = "searching"
	StageGenerating Stage = "generating"
)

// StatusFunc is called as each stage starts. It runs on the pipeline goroutine.
type StatusFunc func(stage Stage)

const DefaultTopK = 5

const tracerName = "juris-rag-be/pipeline"

// Result holds everything one run produced.
type Result struct {
	Query     *query.ProcessedQuery
	Passages  []store.Passage
	Context   *ragcontext.Assembled
	Answer    *response.Answer
	Citations []citation.Citation
	Latency   time.Duration
}

// DocumentsFound is the number of passages that passed the similarity threshold.
func (r *Result) DocumentsFound() int {
	return len(r.Passages)
}

// TopSimilarity is 0 when nothing was retrieved.
func (r *Result) TopSimilarity() float64 {
	if len(r.Passages) == 0 {
		return 0
	}
	return r.Passages[0].Similarity
}

// Pipeline runs query understanding, retrieval, assembly, synthesis and
// citation resolution in order.
type Pipeline struct {
	analyzer     *query.Analyzer
	orchestrator *search.Orchestrator
	assembler    *ragcontext.Assembler
	synthesizer  *response.Synthesizer
	resolver     *citation.Resolver
	topK         int
	tracer       trace.Tracer
	logger       logger.ILogger
}

func New(
	analyzer *query.Analyzer,
	orchestrator *search.Orchestrator,
	assembler *ragcontext.Assembler,
	synthesizer *response.Synthesizer,
	resolver *citation.Resolver,
	topK int,
	log logger.ILogger,
) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Pipeline{
		analyzer:     analyzer,
		orchestrator: orchestrator,
		assembler:    assembler,
		synthesizer:  synthesizer,
		resolver:     resolver,
		topK:         topK,
		tracer:       otel.Tracer(tracerName),
		logger:       log,
	}
}

// Run answers q. history feeds the prompt's history block; q.PriorTurns feeds
// term carry-over. The only error is ctx ending before synthesis starts, in
// which case nothing should be persisted.
func (p *Pipeline) Run(ctx context.Context, q query.Query, history []store.Turn, onStatus StatusFunc) (*Result, error) {
	start := time.Now()
	if onStatus == nil {
		onStatus = func(Stage) {}
	}

	ctx, span := p.tracer.Start(ctx, "rag.pipeline", trace.WithAttributes(
		attribute.String("session_id", q.SessionID),
	))
	defer span.End()

	result := &Result{}

	// Phase 1: understanding
	onStatus(StageProcessing)
	result.Query = p.understand(ctx, q)

	// Phase 2: retrieval
	if err := ctx.Err(); err != nil {
		return nil, p.abort(span, "understanding", err)
	}
	onStatus(StageSearching)
	result.Passages = p.retrieve(ctx, result.Query)

	// Phase 3: assembly + generation
	if err := ctx.Err(); err != nil {
		return nil, p.abort(span, "retrieval", err)
	}
	onStatus(StageGenerating)
	result.Context = p.assemble(ctx, result.Query, result.Passages, history)
	result.Answer = p.synthesize(ctx, result.Context)

	// Phase 4: citations against the exact passage list numbered in the prompt
	result.Citations = p.resolve(ctx, result.Answer.Text, result.Context)
	result.Latency = time.Since(start)

	span.SetAttributes(
		attribute.String("intent", string(result.Query.Intent)),
		attribute.Int("documents_found", result.DocumentsFound()),
		attribute.Int("citations", len(result.Citations)),
		attribute.Float64("confidence", result.Answer.Confidence),
	)

	p.logger.Info("PIPELINE", "Query answered", map[string]interface{}{
		"session_id":      q.SessionID,
		"intent":          result.Query.Intent,
		"complexity":      result.Query.Complexity,
		"documents_found": result.DocumentsFound(),
		"context_docs":    len(result.Context.Passages),
		"citations":       len(result.Citations),
		"confidence":      result.Answer.Confidence,
		"degraded":        result.Answer.Degraded,
		"latency_ms":      result.Latency.Milliseconds(),
	})

	return result, nil
}

func (p *Pipeline) abort(span trace.Span, after string, err error) error {
	span.SetStatus(codes.Error, err.Error())
	p.logger.Warn("PIPELINE", "Run cancelled", map[string]interface{}{
		"after": after,
		"error": err.Error(),
	})
	return fmt.Errorf("pipeline cancelled after %s: %w", after, err)
}

func (p *Pipeline) understand(ctx context.Context, q query.Query) (pq *query.ProcessedQuery) {
	_, span := p.tracer.Start(ctx, "rag.understand")
	defer span.End()

	defer p.recoverStage("understanding", span, func() {
		normalized := query.Normalize(q.Text)
		pq = &query.ProcessedQuery{
			Original:   q.Text,
			Normalized: normalized,
			Expanded:   normalized,
			Intent:     query.IntentGeneralSemantic,
			Complexity: query.ComplexityLow,
		}
	})

	return p.analyzer.Process(q)
}

func (p *Pipeline) retrieve(ctx context.Context, pq *query.ProcessedQuery) (passages []store.Passage) {
	ctx, span := p.tracer.Start(ctx, "rag.retrieve")
	defer span.End()

	defer p.recoverStage("retrieval", span, func() {
		passages = []store.Passage{}
	})

	passages = p.orchestrator.Execute(ctx, pq, p.topK)
	span.SetAttributes(attribute.Int("passages", len(passages)))
	return passages
}

func (p *Pipeline) assemble(ctx context.Context, pq *query.ProcessedQuery, passages []store.Passage, history []store.Turn) (assembled *ragcontext.Assembled) {
	_, span := p.tracer.Start(ctx, "rag.assemble")
	defer span.End()

	// An empty prompt makes the synthesizer short-circuit to a zero-confidence answer.
	defer p.recoverStage("assembly", span, func() {
		assembled = &ragcontext.Assembled{}
	})

	assembled = p.assembler.Assemble(pq, passages, history)
	span.SetAttributes(
		attribute.Int("estimated_tokens", assembled.Metadata.EstimatedTokens),
		attribute.Int("truncated", assembled.Metadata.TruncatedCount),
	)
	return assembled
}

func (p *Pipeline) synthesize(ctx context.Context, assembled *ragcontext.Assembled) (answer *response.Answer) {
	ctx, span := p.tracer.Start(ctx, "rag.synthesize")
	defer span.End()

	defer p.recoverStage("generation", span, func() {
		answer = &response.Answer{
			Text:         response.GenerationFailedMessage,
			FinishReason: response.FinishError,
			Degraded:     true,
		}
	})

	answer = p.synthesizer.Synthesize(ctx, assembled)
	span.SetAttributes(
		attribute.Int("tokens_used", answer.TokensUsed),
		attribute.String("finish_reason", answer.FinishReason),
	)
	return answer
}

func (p *Pipeline) resolve(ctx context.Context, text string, assembled *ragcontext.Assembled) (citations []citation.Citation) {
	_, span := p.tracer.Start(ctx, "rag.cite")
	defer span.End()

	defer p.recoverStage("citation", span, func() {
		citations = []citation.Citation{}
	})

	return p.resolver.Resolve(text, ContextPassages(assembled))
}

// recoverStage turns a panic inside a stage into that stage's degraded value.
func (p *Pipeline) recoverStage(stage string, span trace.Span, fallback func()) {
	r := recover()
	if r == nil {
		return
	}
	span.SetStatus(codes.Error, fmt.Sprint(r))
	p.logger.Error("PIPELINE", "Stage failed, degrading", map[string]interface{}{
		"stage": stage,
		"panic": fmt.Sprint(r),
	})
	fallback()
}

// ContextPassages returns the passages exactly as numbered in the prompt.
func ContextPassages(assembled *ragcontext.Assembled) []store.Passage {
	if assembled == nil {
		return nil
	}
	out := make([]store.Passage, len(assembled.Passages))
	for i, s := range assembled.Passages {
		out[i] = s.Passage
	}
	return out
}
