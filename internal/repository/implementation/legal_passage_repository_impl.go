package implementation

import (
	"context"
	"errors"
	"fmt"

	"juris-rag-be/internal/mapper"
	"juris-rag-be/internal/model"
	"juris-rag-be/internal/repository/contract"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// SQLSTATE codes raised when the passages table or the vector extension is missing.
const (
	sqlStateUndefinedTable    = "42P01"
	sqlStateUndefinedFunction = "42883"
	sqlStateUndefinedObject   = "42704"
)

type LegalPassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LegalPassageMapper
}

func NewLegalPassageRepository(db *gorm.DB) contract.LegalPassageRepository {
	return &LegalPassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewLegalPassageMapper(),
	}
}

func (r *LegalPassageRepositoryImpl) SearchNearest(ctx context.Context, embedding []float32, limit int, filter contract.PassageFilter) ([]*contract.ScoredLegalPassage, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.LegalPassage
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("legal_passages").
		Select("legal_passages.*, (embedding <=> ?) AS distance", queryVector)

	if filter.Court != "" {
		query = query.Where("court = ?", filter.Court)
	}
	if filter.Judge != "" {
		query = query.Where("judge = ?", filter.Judge)
	}
	if len(filter.Topics) > 0 {
		query = query.Where("topic IN ?", filter.Topics)
	}

	err := query.
		Order("distance ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, classifyIndexError(err)
	}

	scored := make([]*contract.ScoredLegalPassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredLegalPassage{
			Passage:  r.mapper.ToEntity(&res.LegalPassage),
			Distance: res.Distance,
		}
	}
	return scored, nil
}

func classifyIndexError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUndefinedTable, sqlStateUndefinedFunction, sqlStateUndefinedObject:
			return fmt.Errorf("%w: %s", contract.ErrIndexUnavailable, pgErr.Message)
		}
	}
	return err
}
