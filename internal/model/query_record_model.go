package model

import (
	"time"

	"github.com/google/uuid"
)

// QueryRecord is one answered question. Only the feedback columns are updated
// after creation.
type QueryRecord struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId        string    `gorm:"type:varchar(128);index"`
	QueryText        string    `gorm:"type:text;not null"`
	QueryType        string    `gorm:"type:varchar(32);index"`
	ResultCount      int       `gorm:"default:0"`
	TopSimilarity    float64   `gorm:"default:0"`
	AnswerText       string    `gorm:"type:text"`
	Confidence       float64   `gorm:"default:0"`
	LatencyMs        int64     `gorm:"default:0"`
	PromptTokens     int       `gorm:"default:0"`
	CompletionTokens int       `gorm:"default:0"`
	TokensUsed       int       `gorm:"default:0"`

	Rating          *int    `gorm:"index"`
	IsHelpful       *bool   `gorm:"index"`
	FeedbackComment *string `gorm:"type:text"`
	FeedbackAt      *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	// Relationships
	Citations []QueryCitation `gorm:"foreignKey:QueryRecordId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (QueryRecord) TableName() string {
	return "query_records"
}
