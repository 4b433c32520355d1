package implementation

import (
	"context"
	"errors"

	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/mapper"
	"juris-rag-be/internal/model"
	"juris-rag-be/internal/repository/contract"
	"juris-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryRecordMapper
}

func NewQueryRecordRepository(db *gorm.DB) contract.QueryRecordRepository {
	return &QueryRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryRecordMapper(),
	}
}

func (r *QueryRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QueryRecordRepositoryImpl) Create(ctx context.Context, record *entity.QueryRecord) error {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *QueryRecordRepositoryImpl) UpdateFeedback(ctx context.Context, id uuid.UUID, feedback entity.QueryFeedback) error {
	updates := map[string]interface{}{
		"feedback_at": feedback.At,
	}
	if feedback.Rating != nil {
		updates["rating"] = *feedback.Rating
	}
	if feedback.IsHelpful != nil {
		updates["is_helpful"] = *feedback.IsHelpful
	}
	if feedback.Comment != nil {
		updates["feedback_comment"] = *feedback.Comment
	}

	res := r.db.WithContext(ctx).
		Model(&model.QueryRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *QueryRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QueryRecord, error) {
	var m model.QueryRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *QueryRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error) {
	var models []*model.QueryRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QueryRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.QueryRecord{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *QueryRecordRepositoryImpl) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&model.QueryRecord{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("rating IS NOT NULL").
		Row().
		Scan(&avg)
	return avg, err
}

func (r *QueryRecordRepositoryImpl) RatingHistogram(ctx context.Context) ([]entity.RatingBucket, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.QueryRecord{}).
		Select("rating, COUNT(*) AS count").
		Where("rating IS NOT NULL").
		Group("rating").
		Order("rating ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]entity.RatingBucket, len(rows))
	for i, row := range rows {
		buckets[i] = entity.RatingBucket{Rating: row.Rating, Count: row.Count}
	}
	return buckets, nil
}
