package mapper

import (
	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/model"
)

type LegalPassageMapper struct{}

func NewLegalPassageMapper() *LegalPassageMapper {
	return &LegalPassageMapper{}
}

func (m *LegalPassageMapper) ToEntity(p *model.LegalPassage) *entity.LegalPassage {
	if p == nil {
		return nil
	}
	return &entity.LegalPassage{
		Id:            p.Id,
		DocumentId:    p.DocumentId,
		Content:       p.Content,
		DocType:       p.DocType,
		Court:         p.Court,
		Judge:         p.Judge,
		CaseNumber:    p.CaseNumber,
		Topic:         p.Topic,
		Title:         p.Title,
		StatuteNumber: p.StatuteNumber,
		Summary:       p.Summary,
		DecisionDate:  p.DecisionDate,
		Embedding:     p.Embedding.Slice(),
		CreatedAt:     p.CreatedAt,
	}
}
