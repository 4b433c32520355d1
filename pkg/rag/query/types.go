package query

// Intent is the closed set of query classes the pipeline distinguishes.
type Intent string

const (
	IntentSpecificCase    Intent = "specific-case"
	IntentCaseLawSearch   Intent = "case-law-search"
	IntentJudgeProfile    Intent = "judge-profile"
	IntentStatuteLookup   Intent = "statute-lookup"
	IntentTrendAnalysis   Intent = "trend-analysis"
	IntentGeneralSemantic Intent = "general-semantic"
)

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Query is the raw request entering the pipeline.
type Query struct {
	Text      string
	SessionID string
	// PriorTurns holds earlier query texts of the conversation, oldest first.
	PriorTurns []string
}

// Entities are the legal references found in a query.
type Entities struct {
	Court      string   `json:"court,omitempty"`
	Judge      string   `json:"judge,omitempty"`
	CaseNumber string   `json:"case_number,omitempty"`
	Topics     []string `json:"topics,omitempty"`
}

// Count returns the number of scalar entities found (court, judge, case number).
func (e Entities) Count() int {
	n := 0
	for _, v := range []string{e.Court, e.Judge, e.CaseNumber} {
		if v != "" {
			n++
		}
	}
	return n
}

func (e Entities) Empty() bool {
	return e.Count() == 0 && len(e.Topics) == 0
}

// ProcessedQuery is the output of query understanding, consumed within one pipeline run.
type ProcessedQuery struct {
	Original       string
	Normalized     string
	Expanded       string
	Entities       Entities
	Intent         Intent
	Complexity     Complexity
	ExpansionTerms []string
	CarriedTerms   []string
}
