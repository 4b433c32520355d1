package entity

import (
	"time"

	"github.com/google/uuid"
)

type QueryRecord struct {
	Id               uuid.UUID
	SessionId        string
	QueryText        string
	QueryType        string
	ResultCount      int
	TopSimilarity    float64
	AnswerText       string
	Confidence       float64
	LatencyMs        int64
	PromptTokens     int
	CompletionTokens int
	TokensUsed       int

	Rating          *int
	IsHelpful       *bool
	FeedbackComment *string
	FeedbackAt      *time.Time

	CreatedAt time.Time
}

// HasFeedback reports whether any feedback field was recorded.
func (q *QueryRecord) HasFeedback() bool {
	return q.Rating != nil || q.IsHelpful != nil || q.FeedbackComment != nil
}

type QueryCitation struct {
	Id             uuid.UUID
	QueryRecordId  uuid.UUID
	MarkerIndex    int
	PassageId      string
	Bibliographic  string
	Excerpt        string
	RelevanceScore float64
	ExternalLink   string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// QueryFeedback is the mutable part of a QueryRecord.
type QueryFeedback struct {
	Rating    *int
	IsHelpful *bool
	Comment   *string
	At        time.Time
}

// RatingBucket is one row of the rating histogram.
type RatingBucket struct {
	Rating int
	Count  int64
}
