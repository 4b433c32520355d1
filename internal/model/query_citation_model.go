package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QueryCitation struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	QueryRecordId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	MarkerIndex    int            `gorm:"not null"`
	PassageId      string         `gorm:"type:varchar(128);index"`
	Bibliographic  string         `gorm:"type:text"`
	Excerpt        string         `gorm:"type:text"`
	RelevanceScore float64        `gorm:"default:0"`
	ExternalLink   string         `gorm:"type:text"`
	Metadata       datatypes.JSON
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (QueryCitation) TableName() string {
	return "query_citations"
}
