package vectorindex

import (
	"context"
	"fmt"

	"juris-rag-be/internal/repository/contract"
	"juris-rag-be/internal/repository/unitofwork"
	"juris-rag-be/pkg/embedding"
	"juris-rag-be/pkg/store"
)

// PgVectorIndex embeds the query text and runs a cosine-distance search over
// the legal_passages table.
type PgVectorIndex struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
}

func NewPgVectorIndex(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory) *PgVectorIndex {
	return &PgVectorIndex{
		embedder:   embedder,
		uowFactory: uowFactory,
	}
}

func (p *PgVectorIndex) Search(ctx context.Context, text string, limit int, filter Filter) ([]Hit, error) {
	vector, err := p.embedder.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.LegalPassageRepository().SearchNearest(ctx, vector, limit, contract.PassageFilter{
		Court:  filter.Court,
		Judge:  filter.Judge,
		Topics: filter.Topics,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]Hit, 0, len(scored))
	for _, s := range scored {
		row := s.Passage
		hits = append(hits, Hit{
			ID:   row.Id.String(),
			Text: row.Content,
			Metadata: store.PassageMetadata{
				Type:          store.ParseDocumentType(row.DocType),
				Court:         row.Court,
				Judge:         row.Judge,
				CaseNumber:    row.CaseNumber,
				Topic:         row.Topic,
				Title:         row.Title,
				StatuteNumber: row.StatuteNumber,
				Summary:       row.Summary,
				Date:          row.DecisionDate,
			},
			Distance: s.Distance,
		})
	}
	return hits, nil
}
