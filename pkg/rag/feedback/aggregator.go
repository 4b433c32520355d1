package feedback

import (
	"context"
	"fmt"
	"time"

	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/repository/specification"
	"juris-rag-be/internal/repository/unitofwork"
)

// Aggregator records feedback and computes quality metrics on demand.
type Aggregator struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewAggregator(uowFactory unitofwork.RepositoryFactory) *Aggregator {
	return &Aggregator{uowFactory: uowFactory, now: time.Now}
}

// Record validates in and writes the feedback columns of its record.
// contract.ErrRecordNotFound is returned for an unknown id.
func (a *Aggregator) Record(ctx context.Context, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	uow := a.uowFactory.NewUnitOfWork(ctx)
	return uow.QueryRecordRepository().UpdateFeedback(ctx, in.QueryRecordID, entity.QueryFeedback{
		Rating:    in.Rating,
		IsHelpful: in.IsHelpful,
		Comment:   in.Comment,
		At:        a.now(),
	})
}

func (a *Aggregator) Metrics(ctx context.Context) (*Metrics, error) {
	repo := a.uowFactory.NewUnitOfWork(ctx).QueryRecordRepository()

	var (
		c   Counts
		err error
	)
	if c.Total, err = repo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	if c.WithFeedback, err = repo.Count(ctx, specification.WithFeedback{}); err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	if c.AverageRating, err = repo.AverageRating(ctx); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	buckets, err := repo.RatingHistogram(ctx)
	if err != nil {
		return nil, fmt.Errorf("rating histogram: %w", err)
	}
	c.Histogram = make(map[int]int64, len(buckets))
	for _, b := range buckets {
		c.Histogram[b.Rating] = b.Count
	}
	if c.Helpful, err = repo.Count(ctx, specification.HelpfulIs{Helpful: true}); err != nil {
		return nil, fmt.Errorf("count helpful: %w", err)
	}
	if c.NotHelpful, err = repo.Count(ctx, specification.HelpfulIs{Helpful: false}); err != nil {
		return nil, fmt.Errorf("count not helpful: %w", err)
	}

	m := Compute(c)
	return &m, nil
}

// NeedsImprovement returns the most recent low-quality records, newest first.
func (a *Aggregator) NeedsImprovement(ctx context.Context, limit int) ([]*entity.QueryRecord, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	return uow.QueryRecordRepository().FindAll(ctx,
		specification.NeedsImprovement{MaxRating: LowRatingThreshold},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: ClampLimit(limit)},
	)
}
