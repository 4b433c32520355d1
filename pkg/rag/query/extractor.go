package query

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EntityExtractor finds legal entities in a raw query.
type EntityExtractor interface {
	Extract(raw string) Entities
}

var (
	// CNJ unified numbering: NNNNNNN-DD.AAAA.J.TR.OOOO
	caseNumberPattern = regexp.MustCompile(`\b\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}\b`)
	courtPattern      = regexp.MustCompile(`(?i)\b(STF|STJ|TST|TSE|STM|TJ[A-Z]{2}|TRF[1-6]|TRT\d{1,2})\b`)
	// One or more stacked role words ("Relator Ministro", "Rel. Min.") precede the name.
	judgePattern = regexp.MustCompile(`\b(?:(?i:` + judgeRoles + `)\s+)+(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+){0,3})`)
	roleWord     = regexp.MustCompile(`^(?i:` + judgeRoles + `)$`)
)

const judgeRoles = `relatora?|rel\.|ministr[oa]|min\.|desembargadora?|des\.|ju[ií]za?`

// defaultTopics is the controlled vocabulary of subjects matched verbatim.
var defaultTopics = []string{
	"dano moral",
	"responsabilidade civil",
	"direito do consumidor",
	"usucapião",
	"pensão alimentícia",
	"divórcio",
	"guarda compartilhada",
	"icms",
	"execução fiscal",
	"aposentadoria",
	"horas extras",
	"rescisão indireta",
	"habeas corpus",
	"tráfico de drogas",
	"improbidade administrativa",
	"licitação",
	"despejo",
	"inventário",
	"recuperação judicial",
	"plano de saúde",
}

// RegexExtractor is the default pattern based extractor.
type RegexExtractor struct {
	topics []string
}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{topics: defaultTopics}
}

// NewRegexExtractorWithTopics swaps the topic vocabulary. Terms must be lower-case.
func NewRegexExtractorWithTopics(topics []string) *RegexExtractor {
	return &RegexExtractor{topics: topics}
}

func (x *RegexExtractor) Extract(raw string) Entities {
	var e Entities

	if m := caseNumberPattern.FindString(raw); m != "" {
		e.CaseNumber = m
	}
	if m := courtPattern.FindStringSubmatch(raw); len(m) > 1 {
		e.Court = strings.ToUpper(m[1])
	}
	if m := judgePattern.FindStringSubmatch(raw); len(m) > 1 {
		e.Judge = stripRoles(m[1])
	}

	normalized := Normalize(raw)
	for _, topic := range x.topics {
		if containsPhrase(normalized, topic) {
			e.Topics = append(e.Topics, topic)
		}
	}
	return e
}

// stripRoles drops role words left at the head of a captured name.
func stripRoles(name string) string {
	fields := strings.Fields(name)
	for len(fields) > 0 && roleWord.MatchString(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// containsPhrase reports whether phrase occurs in text delimited by non-alphanumeric runes.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
		if offset >= len(text) {
			return false
		}
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
