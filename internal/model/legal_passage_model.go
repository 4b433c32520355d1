package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// LegalPassage is an indexed chunk of a judicial decision, statute or case
// record. Rows are written by the ingestion pipeline; this service only reads.
type LegalPassage struct {
	Id            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentId    string          `gorm:"type:varchar(128);index"`
	Content       string          `gorm:"type:text;not null"`
	DocType       string          `gorm:"type:varchar(32);index"`
	Court         string          `gorm:"type:varchar(16);index"`
	Judge         string          `gorm:"type:varchar(255);index"`
	CaseNumber    string          `gorm:"type:varchar(32);index"`
	Topic         string          `gorm:"type:varchar(255);index"`
	Title         string          `gorm:"type:text"`
	StatuteNumber string          `gorm:"type:varchar(64)"`
	Summary       string          `gorm:"type:text"`
	DecisionDate  *time.Time
	Embedding     pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
}

func (LegalPassage) TableName() string {
	return "legal_passages"
}
