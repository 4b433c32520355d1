package query

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	carryOverWindow   = 3
	carryOverMinTurns = 2
	carryOverMaxTerms = 3
	carryOverMinRunes = 4
)

// legalPunctuation survives normalization; everything else that is not a
// letter, digit or space is replaced by a space.
const legalPunctuation = ".,;:-/§ºª()"

var stopwords = map[string]bool{
	"para": true, "como": true, "sobre": true, "qual": true, "quais": true, "quando": true,
	"onde": true, "porque": true, "este": true, "esta": true, "isto": true, "isso": true,
	"esse": true, "essa": true, "aquele": true, "aquela": true, "pelo": true, "pela": true,
	"pelos": true, "pelas": true, "mais": true, "menos": true, "muito": true, "muita": true,
	"também": true, "entre": true, "depois": true, "antes": true, "ainda": true, "seus": true,
	"suas": true, "numa": true, "foram": true, "será": true, "seria": true, "pode": true,
	"podem": true, "deve": true, "devem": true, "existe": true, "existem": true,
	"what": true, "which": true, "about": true, "with": true, "that": true, "this": true,
	"from": true, "there": true,
}

// Normalize lower-cases the text, collapses whitespace and drops punctuation
// that carries no legal meaning.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case strings.ContainsRune(legalPunctuation, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Analyzer turns a raw Query into a ProcessedQuery.
type Analyzer struct {
	extractor EntityExtractor
	synonyms  *SynonymTable
}

func NewAnalyzer(extractor EntityExtractor, synonyms *SynonymTable) *Analyzer {
	if extractor == nil {
		extractor = NewRegexExtractor()
	}
	if synonyms == nil {
		synonyms = NewSynonymTable()
	}
	return &Analyzer{extractor: extractor, synonyms: synonyms}
}

func (a *Analyzer) Process(q Query) *ProcessedQuery {
	normalized := Normalize(q.Text)
	entities := a.extractor.Extract(q.Text)

	expanded, expansion := a.synonyms.Expand(normalized)

	carried := CarryOverTerms(expanded, q.PriorTurns)
	if len(carried) > 0 {
		expanded = expanded + " " + strings.Join(carried, " ")
	}

	return &ProcessedQuery{
		Original:       q.Text,
		Normalized:     normalized,
		Expanded:       expanded,
		Entities:       entities,
		Intent:         ClassifyIntent(normalized, entities),
		Complexity:     RateComplexity(normalized, entities),
		ExpansionTerms: expansion,
		CarriedTerms:   carried,
	}
}

// CarryOverTerms returns up to three words that recur in at least two of the
// last three prior turns and are absent from current.
func CarryOverTerms(current string, priorTurns []string) []string {
	if len(priorTurns) < carryOverMinTurns {
		return nil
	}
	window := priorTurns
	if len(window) > carryOverWindow {
		window = window[len(window)-carryOverWindow:]
	}

	present := make(map[string]bool)
	for _, w := range contentWords(current) {
		present[w] = true
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, turn := range window {
		seenInTurn := make(map[string]bool)
		for _, w := range contentWords(Normalize(turn)) {
			if seenInTurn[w] {
				continue
			}
			seenInTurn[w] = true
			counts[w]++
			if _, ok := firstSeen[w]; !ok {
				firstSeen[w] = order
				order++
			}
		}
	}

	var candidates []string
	for w, c := range counts {
		if c >= carryOverMinTurns && !present[w] {
			candidates = append(candidates, w)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := counts[candidates[i]], counts[candidates[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[candidates[i]] < firstSeen[candidates[j]]
	})
	if len(candidates) > carryOverMaxTerms {
		candidates = candidates[:carryOverMaxTerms]
	}
	return candidates
}

// contentWords splits normalized text into words worth carrying between turns.
func contentWords(normalized string) []string {
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < carryOverMinRunes || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// RateComplexity scores token, entity and topic counts:
// score = tokens*0.1 + entities*1.0 + topics*0.5; >4 high, >2 medium.
func RateComplexity(normalized string, entities Entities) Complexity {
	tokens := len(strings.Fields(normalized))
	score := float64(tokens)*0.1 + float64(entities.Count()) + float64(len(entities.Topics))*0.5
	switch {
	case score > 4:
		return ComplexityHigh
	case score > 2:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}
