package citation

import (
	"strings"

	"juris-rag-be/pkg/store"
)

const dateLayout = "02/01/2006"

// Bibliographic renders a best-effort reference for a passage. Missing parts
// are omitted; a type whose identifying fields are all absent is rendered as
// a generic document.
func Bibliographic(passageID string, m store.PassageMetadata) string {
	switch m.Type {
	case store.DocumentTypeCaseLaw:
		if s := caseLaw(m); s != "" {
			return s
		}
	case store.DocumentTypeStatute:
		if s := statute(m); s != "" {
			return s
		}
	case store.DocumentTypeProcessRecord:
		if s := processRecord(m); s != "" {
			return s
		}
	}
	return generic(passageID, m)
}

func caseLaw(m store.PassageMetadata) string {
	if m.Court == "" && m.CaseNumber == "" {
		return ""
	}
	var parts []string
	if m.Court != "" {
		parts = append(parts, m.Court)
	}
	if m.CaseNumber != "" {
		parts = append(parts, m.CaseNumber)
	}
	if m.Judge != "" {
		parts = append(parts, "Rel. "+m.Judge)
	}
	if m.Date != nil {
		parts = append(parts, "j. "+m.Date.Format(dateLayout))
	}
	return strings.Join(parts, ", ")
}

func statute(m store.PassageMetadata) string {
	if m.StatuteNumber == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("Lei nº ")
	b.WriteString(m.StatuteNumber)
	if m.Date != nil {
		b.WriteString(", de ")
		b.WriteString(m.Date.Format(dateLayout))
	}
	if m.Summary != "" {
		b.WriteString(" - ")
		b.WriteString(m.Summary)
	}
	return b.String()
}

func processRecord(m store.PassageMetadata) string {
	if m.CaseNumber == "" {
		return ""
	}
	s := "Processo nº " + m.CaseNumber
	if m.Court != "" {
		s += " (" + m.Court + ")"
	}
	return s
}

func generic(passageID string, m store.PassageMetadata) string {
	if m.Title != "" {
		return m.Title
	}
	return "Documento " + passageID
}
