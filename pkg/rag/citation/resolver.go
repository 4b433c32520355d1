package citation

import (
	"juris-rag-be/pkg/rag/response"
	"juris-rag-be/pkg/store"
)

// Citation links one [Doc N] marker to the passage it numbers.
type Citation struct {
	MarkerIndex    int                   `json:"marker_index"`
	PassageID      string                `json:"passage_id"`
	Bibliographic  string                `json:"bibliographic"`
	Excerpt        string                `json:"excerpt"`
	RelevanceScore float64               `json:"relevance_score"`
	ExternalLink   string                `json:"external_link,omitempty"`
	Metadata       store.PassageMetadata `json:"metadata"`
}

type Resolver struct {
	links *LinkBuilder
}

func NewResolver(links *LinkBuilder) *Resolver {
	if links == nil {
		links = NewLinkBuilder(nil)
	}
	return &Resolver{links: links}
}

// Resolve maps each distinct marker in answerText to passages[N-1], in order of
// first appearance. Markers outside 1..len(passages) are skipped.
func (r *Resolver) Resolve(answerText string, passages []store.Passage) []Citation {
	markers := response.ParseMarkers(answerText)
	valid, _ := response.SplitMarkers(markers, len(passages))

	citations := make([]Citation, 0, len(valid))
	for _, n := range valid {
		p := passages[n-1]
		citations = append(citations, Citation{
			MarkerIndex:    n,
			PassageID:      p.ID,
			Bibliographic:  Bibliographic(p.ID, p.Metadata),
			Excerpt:        Excerpt(p.Text, MaxExcerptLength),
			RelevanceScore: p.Similarity,
			ExternalLink:   r.links.Link(p.Metadata.Court, p.Metadata.CaseNumber),
			Metadata:       p.Metadata,
		})
	}
	return citations
}
