package store

import (
	"strings"
	"time"
)

// DocumentType is the closed set of indexed legal document kinds.
type DocumentType string

const (
	DocumentTypeCaseLaw       DocumentType = "case_law"
	DocumentTypeStatute       DocumentType = "statute"
	DocumentTypeProcessRecord DocumentType = "process_record"
	DocumentTypeGeneric       DocumentType = "generic"
)

// ParseDocumentType maps the raw "type" value stored in the index to a DocumentType.
// Unknown values fall back to DocumentTypeGeneric.
func ParseDocumentType(raw string) DocumentType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "case_law", "caselaw", "jurisprudencia", "jurisprudência", "acordao", "acórdão", "decision":
		return DocumentTypeCaseLaw
	case "statute", "legislacao", "legislação", "lei", "law":
		return DocumentTypeStatute
	case "process_record", "processo", "process", "case_record":
		return DocumentTypeProcessRecord
	default:
		return DocumentTypeGeneric
	}
}

// PassageMetadata is the typed metadata attached to every indexed passage.
// Fields irrelevant to a document type are left empty.
type PassageMetadata struct {
	Type          DocumentType `json:"type"`
	Court         string       `json:"court,omitempty"`
	Judge         string       `json:"judge,omitempty"`
	CaseNumber    string       `json:"case_number,omitempty"`
	Topic         string       `json:"topic,omitempty"`
	Title         string       `json:"title,omitempty"`
	StatuteNumber string       `json:"statute_number,omitempty"`
	Summary       string       `json:"summary,omitempty"`
	Date          *time.Time   `json:"date,omitempty"`
}

// Passage is one retrieved, ranked unit of indexed text.
type Passage struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Metadata   PassageMetadata `json:"metadata"`
	Similarity float64         `json:"similarity_score"`
	Rank       int             `json:"rank"`
}

// Turn is one completed question/answer exchange kept in session memory.
type Turn struct {
	Query  string    `json:"query"`
	Answer string    `json:"answer"`
	At     time.Time `json:"at"`
}

// Queries returns the query text of each turn, oldest first.
func Queries(turns []Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Query
	}
	return out
}

// Map flattens the metadata for JSON columns, dropping empty fields.
func (m PassageMetadata) Map() map[string]any {
	out := map[string]any{"type": string(m.Type)}
	for k, v := range map[string]string{
		"court":          m.Court,
		"judge":          m.Judge,
		"case_number":    m.CaseNumber,
		"topic":          m.Topic,
		"title":          m.Title,
		"statute_number": m.StatuteNumber,
		"summary":        m.Summary,
	} {
		if v != "" {
			out[k] = v
		}
	}
	if m.Date != nil {
		out["date"] = m.Date.Format("2006-01-02")
	}
	return out
}
