package contract

import (
	"context"

	"juris-rag-be/internal/entity"
)

// ScoredLegalPassage wraps a passage with its cosine distance to the query.
type ScoredLegalPassage struct {
	Passage  *entity.LegalPassage
	Distance float64 // 0.0 = identical, 2.0 = opposite
}

// PassageFilter restricts a nearest-neighbour search. Zero values are ignored;
// Topics match any of the listed values.
type PassageFilter struct {
	Court  string
	Judge  string
	Topics []string
}

type LegalPassageRepository interface {
	SearchNearest(ctx context.Context, embedding []float32, limit int, filter PassageFilter) ([]*ScoredLegalPassage, error)
}
