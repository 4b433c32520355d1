package response

import (
	"math"
	"strings"

	"juris-rag-be/pkg/llm"
)

// Weights scale the five confidence factors. They are normalised by their
// sum, so only their ratios matter.
type Weights struct {
	Relevance    float64
	PassageCount float64
	Citations    float64
	Length       float64
	Completion   float64
}

func DefaultWeights() Weights {
	return Weights{Relevance: 0.2, PassageCount: 0.2, Citations: 0.2, Length: 0.2, Completion: 0.2}
}

func (w Weights) sum() float64 {
	return w.Relevance + w.PassageCount + w.Citations + w.Length + w.Completion
}

// Factors are the individual [0,1] confidence signals.
type Factors struct {
	Relevance    float64 `json:"relevance"`
	PassageCount float64 `json:"passage_count"`
	Citations    float64 `json:"citations"`
	Length       float64 `json:"length"`
	Completion   float64 `json:"completion"`
}

func ComputeFactors(avgRelevance float64, passages, citations int, text, finishReason string) Factors {
	f := Factors{
		Relevance:    clamp01(avgRelevance),
		PassageCount: math.Min(float64(passages)/5, 1),
		Citations:    0.3,
		Length:       0.4,
		Completion:   0.6,
	}
	if citations > 0 {
		f.Citations = math.Min(float64(citations)/3, 1)
	}
	switch words := len(strings.Fields(text)); {
	case words >= 50:
		f.Length = 1.0
	case words >= 20:
		f.Length = 0.7
	}
	if finishReason == llm.FinishStop {
		f.Completion = 1.0
	}
	return f
}

// Score is the weighted mean of the factors. Invalid weights fall back to
// the unweighted mean.
func (f Factors) Score(w Weights) float64 {
	total := w.sum()
	if total <= 0 || w.Relevance < 0 || w.PassageCount < 0 || w.Citations < 0 || w.Length < 0 || w.Completion < 0 {
		w = DefaultWeights()
		total = w.sum()
	}
	score := (f.Relevance*w.Relevance +
		f.PassageCount*w.PassageCount +
		f.Citations*w.Citations +
		f.Length*w.Length +
		f.Completion*w.Completion) / total
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
