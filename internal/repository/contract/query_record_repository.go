package contract

import (
	"context"

	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QueryRecordRepository interface {
	Create(ctx context.Context, record *entity.QueryRecord) error
	// UpdateFeedback touches only the feedback columns. It returns
	// ErrRecordNotFound when no row matches id.
	UpdateFeedback(ctx context.Context, id uuid.UUID, feedback entity.QueryFeedback) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QueryRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	AverageRating(ctx context.Context) (float64, error)
	RatingHistogram(ctx context.Context) ([]entity.RatingBucket, error)
}
