package mapper

import (
	"encoding/json"

	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/model"

	"gorm.io/datatypes"
)

type QueryRecordMapper struct{}

func NewQueryRecordMapper() *QueryRecordMapper {
	return &QueryRecordMapper{}
}

func (m *QueryRecordMapper) ToEntity(r *model.QueryRecord) *entity.QueryRecord {
	if r == nil {
		return nil
	}
	return &entity.QueryRecord{
		Id:               r.Id,
		SessionId:        r.SessionId,
		QueryText:        r.QueryText,
		QueryType:        r.QueryType,
		ResultCount:      r.ResultCount,
		TopSimilarity:    r.TopSimilarity,
		AnswerText:       r.AnswerText,
		Confidence:       r.Confidence,
		LatencyMs:        r.LatencyMs,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TokensUsed:       r.TokensUsed,
		Rating:           r.Rating,
		IsHelpful:        r.IsHelpful,
		FeedbackComment:  r.FeedbackComment,
		FeedbackAt:       r.FeedbackAt,
		CreatedAt:        r.CreatedAt,
	}
}

func (m *QueryRecordMapper) ToModel(e *entity.QueryRecord) *model.QueryRecord {
	if e == nil {
		return nil
	}
	return &model.QueryRecord{
		Id:               e.Id,
		SessionId:        e.SessionId,
		QueryText:        e.QueryText,
		QueryType:        e.QueryType,
		ResultCount:      e.ResultCount,
		TopSimilarity:    e.TopSimilarity,
		AnswerText:       e.AnswerText,
		Confidence:       e.Confidence,
		LatencyMs:        e.LatencyMs,
		PromptTokens:     e.PromptTokens,
		CompletionTokens: e.CompletionTokens,
		TokensUsed:       e.TokensUsed,
		Rating:           e.Rating,
		IsHelpful:        e.IsHelpful,
		FeedbackComment:  e.FeedbackComment,
		FeedbackAt:       e.FeedbackAt,
		CreatedAt:        e.CreatedAt,
	}
}

func (m *QueryRecordMapper) ToEntities(records []*model.QueryRecord) []*entity.QueryRecord {
	entities := make([]*entity.QueryRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func (m *QueryRecordMapper) CitationToEntity(c *model.QueryCitation) *entity.QueryCitation {
	if c == nil {
		return nil
	}
	var meta map[string]any
	if len(c.Metadata) > 0 {
		// Unreadable metadata is dropped rather than failing the whole read.
		_ = json.Unmarshal(c.Metadata, &meta)
	}
	return &entity.QueryCitation{
		Id:             c.Id,
		QueryRecordId:  c.QueryRecordId,
		MarkerIndex:    c.MarkerIndex,
		PassageId:      c.PassageId,
		Bibliographic:  c.Bibliographic,
		Excerpt:        c.Excerpt,
		RelevanceScore: c.RelevanceScore,
		ExternalLink:   c.ExternalLink,
		Metadata:       meta,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *QueryRecordMapper) CitationToModel(c *entity.QueryCitation) (*model.QueryCitation, error) {
	if c == nil {
		return nil, nil
	}
	var meta datatypes.JSON
	if len(c.Metadata) > 0 {
		raw, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, err
		}
		meta = datatypes.JSON(raw)
	}
	return &model.QueryCitation{
		Id:             c.Id,
		QueryRecordId:  c.QueryRecordId,
		MarkerIndex:    c.MarkerIndex,
		PassageId:      c.PassageId,
		Bibliographic:  c.Bibliographic,
		Excerpt:        c.Excerpt,
		RelevanceScore: c.RelevanceScore,
		ExternalLink:   c.ExternalLink,
		Metadata:       meta,
		CreatedAt:      c.CreatedAt,
	}, nil
}
