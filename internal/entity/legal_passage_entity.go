package entity

import (
	"time"

	"github.com/google/uuid"
)

type LegalPassage struct {
	Id            uuid.UUID
	DocumentId    string
	Content       string
	DocType       string
	Court         string
	Judge         string
	CaseNumber    string
	Topic         string
	Title         string
	StatuteNumber string
	Summary       string
	DecisionDate  *time.Time
	Embedding     []float32
	CreatedAt     time.Time
}
