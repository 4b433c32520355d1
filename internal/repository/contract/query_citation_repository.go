package contract

import (
	"context"

	"juris-rag-be/internal/entity"

	"github.com/google/uuid"
)

type QueryCitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.QueryCitation) error
	FindByQueryRecordId(ctx context.Context, queryRecordId uuid.UUID) ([]*entity.QueryCitation, error)
}
