package query

import (
	"strings"
	"unicode/utf8"
)

// intentRule maps a keyword list to an intent. Rules are evaluated in order and
// the first rule with a matching keyword wins.
type intentRule struct {
	intent   Intent
	keywords []string
}

var intentRules = []intentRule{
	{
		intent: IntentJudgeProfile,
		keywords: []string{
			"perfil", "como vota", "como decide", "votos do", "votos da",
			"posicionamento do ministro", "posicionamento da ministra", "histórico do juiz",
		},
	},
	{
		intent: IntentStatuteLookup,
		keywords: []string{
			"lei", "artigo", "art.", "código", "súmula", "decreto", "constituição",
			"inciso", "parágrafo", "§",
		},
	},
	{
		intent: IntentTrendAnalysis,
		keywords: []string{
			"tendência", "tendências", "evolução", "estatística", "estatísticas",
			"ao longo dos anos", "quantos", "quantas", "percentual", "frequência",
		},
	},
	{
		intent: IntentCaseLawSearch,
		keywords: []string{
			"jurisprudência", "jurisprudencial", "precedente", "precedentes", "acórdão",
			"acórdãos", "julgado", "julgados", "decisões", "entendimento",
		},
	},
}

// ClassifyIntent picks the query intent. A detected case number always yields
// IntentSpecificCase; an extracted judge yields IntentJudgeProfile; otherwise the
// keyword rules are tried in order against the normalized text.
func ClassifyIntent(normalized string, entities Entities) Intent {
	if entities.CaseNumber != "" {
		return IntentSpecificCase
	}
	if entities.Judge != "" {
		return IntentJudgeProfile
	}
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if containsKeyword(normalized, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneralSemantic
}

// containsKeyword is containsPhrase, except that keywords ending in punctuation
// ("art.", "§") only need a boundary before them.
func containsKeyword(text, kw string) bool {
	last, _ := utf8.DecodeLastRuneInString(kw)
	if isWordRune(last) {
		return containsPhrase(text, kw)
	}
	offset := 0
	for offset < len(text) {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		first, _ := utf8.DecodeRuneInString(kw)
		if !isWordRune(first) || boundaryBefore(text, start) {
			return true
		}
		offset = start + 1
	}
	return false
}
