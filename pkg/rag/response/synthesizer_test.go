package response

import (
	"context"
	"errors"
	"strings"
	"testing"

	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/llm"
	ragcontext "juris-rag-be/pkg/rag/context"
	"juris-rag-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	completion *llm.Completion
	err        error
	calls      int
	gotOpts    llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.calls++
	for _, o := range options {
		o(&f.gotOpts)
	}
	return f.completion, f.err
}

func assembled(n int, avg float64) *ragcontext.Assembled {
	a := &ragcontext.Assembled{Prompt: "prompt", Metadata: ragcontext.Metadata{AvgRelevance: avg, PassageCount: n}}
	for i := 0; i < n; i++ {
		a.Passages = append(a.Passages, ragcontext.SelectedPassage{Passage: store.Passage{ID: string(rune('a' + i))}})
	}
	return a
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("palavra ", n))
}

func TestSynthesizeScoresAnswer(t *testing.T) {
	text := words(60) + " [Doc 1] e [Doc 2], reforçado em [doc 1]."
	fake := &fakeLLM{completion: &llm.Completion{Content: text, FinishReason: llm.FinishStop, PromptTokens: 900, CompletionTokens: 120}}
	s := NewSynthesizer(fake, DefaultConfig(), logger.NewNopLogger())

	got := s.Synthesize(context.Background(), assembled(2, 0.8))

	require.NotNil(t, got)
	assert.False(t, got.Degraded)
	assert.Equal(t, []int{1, 2}, got.Markers)
	assert.Empty(t, got.DroppedMarkers)
	assert.Equal(t, 1020, got.TokensUsed)
	assert.InDelta(t, (0.8+0.4+2.0/3+1+1)/5, got.Confidence, 1e-9)
	assert.InDelta(t, 0.1, fake.gotOpts.Temperature, 1e-9)
	assert.Equal(t, 1024, fake.gotOpts.MaxTokens)
}

func TestSynthesizeDropsOutOfRangeMarkers(t *testing.T) {
	fake := &fakeLLM{completion: &llm.Completion{Content: "Ver [Doc 1] e [Doc 9].", FinishReason: llm.FinishLength}}
	s := NewSynthesizer(fake, DefaultConfig(), logger.NewNopLogger())

	got := s.Synthesize(context.Background(), assembled(3, 0.5))

	assert.Equal(t, []int{1}, got.Markers)
	assert.Equal(t, []int{9}, got.DroppedMarkers)
	// relevance .5, count .6, citations 1/3, length .4, abnormal stop .6
	assert.InDelta(t, (0.5+0.6+1.0/3+0.4+0.6)/5, got.Confidence, 1e-9)
}

func TestSynthesizePenalizesDroppedMarkersWhenEnabled(t *testing.T) {
	fake := &fakeLLM{completion: &llm.Completion{Content: "Ver [Doc 1], [Doc 7] e [Doc 9].", FinishReason: llm.FinishStop}}
	cfg := DefaultConfig()
	cfg.PenalizeDroppedCitations = true
	s := NewSynthesizer(fake, cfg, logger.NewNopLogger())

	got := s.Synthesize(context.Background(), assembled(1, 1.0))

	base := (1.0 + 0.2 + 1.0/3 + 0.4 + 1.0) / 5
	assert.InDelta(t, base*0.81, got.Confidence, 1e-9)
}

func TestSynthesizeDegradesOnModelError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("context deadline exceeded")}
	s := NewSynthesizer(fake, DefaultConfig(), logger.NewNopLogger())

	got := s.Synthesize(context.Background(), assembled(2, 0.9))

	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, GenerationFailedMessage, got.Text)
	assert.True(t, got.Degraded)
	assert.Empty(t, got.Markers)
}

func TestSynthesizeDegradesOnEmptyAnswer(t *testing.T) {
	fake := &fakeLLM{completion: &llm.Completion{Content: "  ", FinishReason: llm.FinishStop}}
	s := NewSynthesizer(fake, DefaultConfig(), logger.NewNopLogger())

	got := s.Synthesize(context.Background(), assembled(2, 0.9))

	assert.Equal(t, 0.0, got.Confidence)
	assert.True(t, got.Degraded)
}

func TestSynthesizeShortCircuits(t *testing.T) {
	fake := &fakeLLM{}
	s := NewSynthesizer(fake, DefaultConfig(), logger.NewNopLogger())

	noDocs := s.Synthesize(context.Background(), assembled(0, 0))
	assert.Equal(t, NoDocumentsMessage, noDocs.Text)
	assert.Equal(t, 0.0, noDocs.Confidence)
	assert.Equal(t, FinishNoDocuments, noDocs.FinishReason)

	empty := s.Synthesize(context.Background(), &ragcontext.Assembled{})
	assert.Equal(t, EmptyPromptMessage, empty.Text)
	assert.Equal(t, 0.0, empty.Confidence)

	assert.Equal(t, 0, fake.calls)
}

func TestParseMarkers(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, ParseMarkers("a [Doc 3] b [DOC 1] c [ doc 2 ] d [Doc 3]"))
	assert.Nil(t, ParseMarkers("sem citações"))
}

func TestScoreWithCustomWeights(t *testing.T) {
	f := Factors{Relevance: 1, PassageCount: 0, Citations: 0, Length: 0, Completion: 0}

	assert.InDelta(t, 0.5, f.Score(Weights{Relevance: 1, Completion: 1}), 1e-9)
	assert.InDelta(t, 0.2, f.Score(Weights{}), 1e-9)
}
