package implementation

import (
	"context"
	"fmt"

	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/mapper"
	"juris-rag-be/internal/model"
	"juris-rag-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryCitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryRecordMapper
}

func NewQueryCitationRepository(db *gorm.DB) contract.QueryCitationRepository {
	return &QueryCitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryRecordMapper(),
	}
}

func (r *QueryCitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.QueryCitation) error {
	if len(citations) == 0 {
		return nil
	}

	models := make([]*model.QueryCitation, len(citations))
	for i, c := range citations {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		m, err := r.mapper.CitationToModel(c)
		if err != nil {
			return fmt.Errorf("encode citation %d metadata: %w", c.MarkerIndex, err)
		}
		models[i] = m
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*citations[i] = *r.mapper.CitationToEntity(m)
	}
	return nil
}

func (r *QueryCitationRepositoryImpl) FindByQueryRecordId(ctx context.Context, queryRecordId uuid.UUID) ([]*entity.QueryCitation, error) {
	var models []*model.QueryCitation
	err := r.db.WithContext(ctx).
		Where("query_record_id = ?", queryRecordId).
		Order("marker_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.QueryCitation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CitationToEntity(m)
	}
	return entities, nil
}
