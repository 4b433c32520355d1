package prompt

import (
	"fmt"
	"strings"

	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/store"
)

// Passage is one numbered source block. Number is the N in [Doc N].
type Passage struct {
	Number     int
	Text       string
	Metadata   store.PassageMetadata
	Similarity float64
	Truncated  bool
}

// LegalBuilder renders the single prompt sent to the model.
type LegalBuilder struct {
	query    string
	entities query.Entities
	history  string
	passages []Passage
}

func NewLegalBuilder(originalQuery string, entities query.Entities, history string, passages []Passage) *LegalBuilder {
	return &LegalBuilder{
		query:    originalQuery,
		entities: entities,
		history:  history,
		passages: passages,
	}
}

// Build returns "" when there is no question to answer.
func (b *LegalBuilder) Build() string {
	if strings.TrimSpace(b.query) == "" {
		return ""
	}

	var prompt strings.Builder

	b.writeInstructions(&prompt)
	b.writeHistory(&prompt)
	b.writeEntities(&prompt)
	b.writeDocuments(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *LegalBuilder) writeInstructions(prompt *strings.Builder) {
	prompt.WriteString("<instrucoes>\n")
	prompt.WriteString("Você é um assistente jurídico que responde perguntas sobre o direito brasileiro.\n")
	prompt.WriteString("1. Responda somente com base nos documentos fornecidos abaixo.\n")
	prompt.WriteString("2. Cite cada afirmação com o marcador do documento correspondente, no formato [Doc N].\n")
	prompt.WriteString("3. Se os documentos não sustentarem uma resposta, diga isso com honestidade em vez de supor.\n")
	prompt.WriteString("4. Não invente números de processo, datas, nomes de relatores ou dispositivos legais.\n")
	prompt.WriteString("</instrucoes>\n\n")
}

func (b *LegalBuilder) writeHistory(prompt *strings.Builder) {
	if strings.TrimSpace(b.history) == "" {
		return
	}
	prompt.WriteString("<historico>\n")
	prompt.WriteString(b.history)
	prompt.WriteString("</historico>\n\n")
}

func (b *LegalBuilder) writeEntities(prompt *strings.Builder) {
	if b.entities.Empty() {
		return
	}

	var parts []string
	if b.entities.Court != "" {
		parts = append(parts, "Tribunal: "+b.entities.Court)
	}
	if b.entities.Judge != "" {
		parts = append(parts, "Relator: "+b.entities.Judge)
	}
	if b.entities.CaseNumber != "" {
		parts = append(parts, "Processo: "+b.entities.CaseNumber)
	}
	if len(b.entities.Topics) > 0 {
		parts = append(parts, "Temas: "+strings.Join(b.entities.Topics, ", "))
	}

	prompt.WriteString("<entidades>\n")
	prompt.WriteString(strings.Join(parts, "\n"))
	prompt.WriteString("\n</entidades>\n\n")
}

func (b *LegalBuilder) writeDocuments(prompt *strings.Builder) {
	prompt.WriteString("<documentos>\n")
	if len(b.passages) == 0 {
		prompt.WriteString("Nenhum documento relevante foi encontrado.\n")
	}
	for _, p := range b.passages {
		prompt.WriteString(Header(p))
		prompt.WriteString("\n")
		prompt.WriteString(strings.TrimSpace(p.Text))
		if p.Truncated {
			prompt.WriteString(" [...]")
		}
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</documentos>\n\n")
}

func (b *LegalBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<pergunta>\n")
	prompt.WriteString(strings.TrimSpace(b.query))
	prompt.WriteString("\n</pergunta>\n\n")
	prompt.WriteString("Resposta fundamentada, com citações [Doc N]:")
}

var typeLabels = map[store.DocumentType]string{
	store.DocumentTypeCaseLaw:       "Jurisprudência",
	store.DocumentTypeStatute:       "Legislação",
	store.DocumentTypeProcessRecord: "Processo",
	store.DocumentTypeGeneric:       "Documento",
}

// Header renders the metadata line of a passage block, e.g.
// "[Doc 1] Jurisprudência | STJ | Processo 0001234-56.2024.8.26.0100 | relevância 0.87".
func Header(p Passage) string {
	m := p.Metadata
	label, ok := typeLabels[m.Type]
	if !ok {
		label = typeLabels[store.DocumentTypeGeneric]
	}

	parts := []string{fmt.Sprintf("[Doc %d] %s", p.Number, label)}
	if m.Court != "" {
		parts = append(parts, m.Court)
	}
	if m.CaseNumber != "" {
		parts = append(parts, "Processo "+m.CaseNumber)
	}
	if m.StatuteNumber != "" {
		parts = append(parts, "Lei "+m.StatuteNumber)
	}
	if m.Judge != "" {
		parts = append(parts, "Rel. "+m.Judge)
	}
	if m.Date != nil {
		parts = append(parts, m.Date.Format("02/01/2006"))
	}
	if m.Topic != "" {
		parts = append(parts, "Tema: "+m.Topic)
	}
	parts = append(parts, fmt.Sprintf("relevância %.2f", p.Similarity))
	return strings.Join(parts, " | ")
}
