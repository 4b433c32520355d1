package response

import (
	"context"
	"math"
	"strings"
	"time"

	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/llm"
	ragcontext "juris-rag-be/pkg/rag/context"
)

// Finish reasons set when the model is never called.
const (
	FinishNoDocuments = "no_documents"
	FinishEmptyPrompt = "empty_prompt"
	FinishError       = "error"
)

const droppedCitationPenalty = 0.9

type Config struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Weights     Weights
	// PenalizeDroppedCitations scales confidence by 0.9 per out-of-range marker.
	PenalizeDroppedCitations bool
}

func DefaultConfig() Config {
	return Config{
		Temperature: 0.1,
		MaxTokens:   1024,
		Timeout:     120 * time.Second,
		Weights:     DefaultWeights(),
	}
}

// Answer is the synthesized reply. Markers holds only markers that resolve to
// a passage of the assembled context.
type Answer struct {
	Text             string
	Confidence       float64
	Factors          Factors
	Markers          []int
	DroppedMarkers   []int
	PromptTokens     int
	CompletionTokens int
	TokensUsed       int
	FinishReason     string
	// Degraded is set when the text is a fallback message rather than model output.
	Degraded bool
}

// Synthesizer invokes the model and scores its answer.
type Synthesizer struct {
	llmProvider llm.LLMProvider
	config      Config
	logger      logger.ILogger
}

func NewSynthesizer(llmProvider llm.LLMProvider, config Config, log logger.ILogger) *Synthesizer {
	def := DefaultConfig()
	if config.MaxTokens <= 0 {
		config.MaxTokens = def.MaxTokens
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.Weights.sum() <= 0 {
		config.Weights = def.Weights
	}
	return &Synthesizer{
		llmProvider: llmProvider,
		config:      config,
		logger:      log,
	}
}

// Synthesize never returns an error: failures become zero-confidence answers.
func (s *Synthesizer) Synthesize(ctx context.Context, assembled *ragcontext.Assembled) *Answer {
	if assembled == nil || strings.TrimSpace(assembled.Prompt) == "" {
		return &Answer{Text: EmptyPromptMessage, FinishReason: FinishEmptyPrompt, Degraded: true}
	}
	if len(assembled.Passages) == 0 {
		return &Answer{Text: NoDocumentsMessage, FinishReason: FinishNoDocuments, Degraded: true}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	completion, err := s.llmProvider.Chat(genCtx,
		[]llm.Message{{Role: "user", Content: assembled.Prompt}},
		llm.WithTemperature(s.config.Temperature),
		llm.WithMaxTokens(s.config.MaxTokens),
	)
	if err != nil {
		s.logger.Error("GENERATION", "LLM generation failed", map[string]interface{}{
			"error":    err.Error(),
			"passages": len(assembled.Passages),
		})
		return &Answer{Text: GenerationFailedMessage, FinishReason: FinishError, Degraded: true}
	}
	if strings.TrimSpace(completion.Content) == "" {
		s.logger.Warn("GENERATION", "LLM returned an empty answer", map[string]interface{}{
			"finish_reason": completion.FinishReason,
		})
		return &Answer{
			Text:             GenerationFailedMessage,
			FinishReason:     completion.FinishReason,
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
			TokensUsed:       completion.TotalTokens(),
			Degraded:         true,
		}
	}

	text := strings.TrimSpace(completion.Content)
	valid, dropped := SplitMarkers(ParseMarkers(text), len(assembled.Passages))

	factors := ComputeFactors(assembled.Metadata.AvgRelevance, len(assembled.Passages), len(valid), text, completion.FinishReason)
	confidence := factors.Score(s.config.Weights)
	if s.config.PenalizeDroppedCitations && len(dropped) > 0 {
		confidence *= math.Pow(droppedCitationPenalty, float64(len(dropped)))
	}

	s.logger.Info("GENERATION", "Answer generated", map[string]interface{}{
		"passages":      len(assembled.Passages),
		"citations":     len(valid),
		"dropped":       len(dropped),
		"confidence":    confidence,
		"finish_reason": completion.FinishReason,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	return &Answer{
		Text:             text,
		Confidence:       confidence,
		Factors:          factors,
		Markers:          valid,
		DroppedMarkers:   dropped,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
		TokensUsed:       completion.TotalTokens(),
		FinishReason:     completion.FinishReason,
	}
}
