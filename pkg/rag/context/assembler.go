package context

import (
	"sort"
	"strings"
	"unicode/utf8"

	"juris-rag-be/pkg/rag/history"
	"juris-rag-be/pkg/rag/prompt"
	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/store"
)

// TokenEstimator approximates the token length of a text.
type TokenEstimator func(text string) int

// EstimateTokens is ceil(chars/4).
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

type Config struct {
	TokenBudget         int
	MinTruncationTokens int
	HistoryTurns        int
	IncludeHistory      bool
}

func DefaultConfig() Config {
	return Config{
		TokenBudget:         3000,
		MinTruncationTokens: 200,
		HistoryTurns:        history.DefaultTurns,
		IncludeHistory:      true,
	}
}

// SelectedPassage is a passage admitted into the prompt, possibly cut short.
type SelectedPassage struct {
	store.Passage
	Truncated bool
	Tokens    int
}

type Metadata struct {
	PassageCount    int
	TruncatedCount  int
	HistoryTurns    int
	HistoryTokens   int
	PassageTokens   int
	EstimatedTokens int
	AvgRelevance    float64
}

// Assembled is the prompt plus the exact passage list it numbers. Passages[i]
// is [Doc i+1].
type Assembled struct {
	Passages []SelectedPassage
	History  string
	Prompt   string
	Metadata Metadata
}

type Assembler struct {
	config   Config
	estimate TokenEstimator
}

func NewAssembler(config Config, estimator TokenEstimator) *Assembler {
	def := DefaultConfig()
	if config.TokenBudget <= 0 {
		config.TokenBudget = def.TokenBudget
	}
	if config.MinTruncationTokens <= 0 {
		config.MinTruncationTokens = def.MinTruncationTokens
	}
	if config.HistoryTurns <= 0 {
		config.HistoryTurns = def.HistoryTurns
	}
	if estimator == nil {
		estimator = EstimateTokens
	}
	return &Assembler{config: config, estimate: estimator}
}

// Assemble fits history and passages into the token budget and renders the
// prompt. History is charged first; passages are then admitted by descending
// similarity until the budget is spent.
func (a *Assembler) Assemble(pq *query.ProcessedQuery, passages []store.Passage, turns []store.Turn) *Assembled {
	remaining := a.config.TokenBudget

	historyText, historyTurns := a.fitHistory(turns, remaining)
	historyTokens := 0
	if historyText != "" {
		historyTokens = a.estimate(historyText)
		remaining -= historyTokens
	}

	ordered := make([]store.Passage, len(passages))
	copy(ordered, passages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Similarity > ordered[j].Similarity
	})

	selected := make([]SelectedPassage, 0, len(ordered))
	passageTokens := 0
	for _, p := range ordered {
		cost := a.estimate(p.Text)
		if cost <= remaining {
			selected = append(selected, SelectedPassage{Passage: p, Tokens: cost})
			remaining -= cost
			passageTokens += cost
			continue
		}
		if remaining >= a.config.MinTruncationTokens {
			cut := a.truncate(p.Text, remaining)
			if cut != "" {
				cutTokens := a.estimate(cut)
				p.Text = cut
				selected = append(selected, SelectedPassage{Passage: p, Truncated: true, Tokens: cutTokens})
				remaining -= cutTokens
				passageTokens += cutTokens
			}
		}
		break
	}

	meta := Metadata{
		PassageCount:    len(selected),
		HistoryTurns:    historyTurns,
		HistoryTokens:   historyTokens,
		PassageTokens:   passageTokens,
		EstimatedTokens: historyTokens + passageTokens,
	}
	var relevance float64
	blocks := make([]prompt.Passage, len(selected))
	for i, s := range selected {
		relevance += s.Similarity
		if s.Truncated {
			meta.TruncatedCount++
		}
		blocks[i] = prompt.Passage{
			Number:     i + 1,
			Text:       s.Text,
			Metadata:   s.Metadata,
			Similarity: s.Similarity,
			Truncated:  s.Truncated,
		}
	}
	if len(selected) > 0 {
		meta.AvgRelevance = relevance / float64(len(selected))
	}

	return &Assembled{
		Passages: selected,
		History:  historyText,
		Prompt:   prompt.NewLegalBuilder(pq.Original, pq.Entities, historyText, blocks).Build(),
		Metadata: meta,
	}
}

// fitHistory drops the oldest turns until the rendered block fits budget.
func (a *Assembler) fitHistory(turns []store.Turn, budget int) (string, int) {
	if !a.config.IncludeHistory || len(turns) == 0 {
		return "", 0
	}
	window := history.Window(turns, a.config.HistoryTurns)
	for len(window) > 0 {
		text := history.Format(window)
		if a.estimate(text) <= budget {
			return text, len(window)
		}
		window = window[1:]
	}
	return "", 0
}

// truncate cuts text to at most budget tokens, preferring a word boundary.
func (a *Assembler) truncate(text string, budget int) string {
	runes := []rune(strings.TrimSpace(text))
	limit := budget * 4
	if limit >= len(runes) {
		limit = len(runes)
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	for cut != "" && a.estimate(cut) > budget {
		r := []rune(cut)
		cut = strings.TrimSpace(string(r[:len(r)*9/10]))
	}
	return strings.TrimSpace(cut)
}
