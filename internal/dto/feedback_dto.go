package dto

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackRequest struct {
	QueryRecordId uuid.UUID `json:"query_record_id" validate:"required"`
	Rating        *int      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	IsHelpful     *bool     `json:"is_helpful,omitempty"`
	Comment       *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type FeedbackResponse struct {
	QueryRecordId uuid.UUID `json:"query_record_id"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type FeedbackStatsResponse struct {
	TotalRecords    int64         `json:"total_records"`
	WithFeedback    int64         `json:"with_feedback"`
	Coverage        float64       `json:"feedback_coverage"`
	AverageRating   float64       `json:"average_rating"`
	RatingHistogram map[int]int64 `json:"rating_histogram"`
	Helpful         int64         `json:"helpful"`
	NotHelpful      int64         `json:"not_helpful"`
}

type NeedsImprovementResponse struct {
	Id         uuid.UUID `json:"id"`
	SessionId  string    `json:"session_id"`
	QueryText  string    `json:"query_text"`
	QueryType  string    `json:"query_type"`
	AnswerText string    `json:"answer_text"`
	Confidence float64   `json:"confidence"`
	Rating     *int      `json:"rating,omitempty"`
	IsHelpful  *bool     `json:"is_helpful,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackRecordedMessage is the in-process payload published after feedback is stored.
type FeedbackRecordedMessage struct {
	QueryRecordId uuid.UUID `json:"query_record_id"`
	Rating        *int      `json:"rating,omitempty"`
	IsHelpful     *bool     `json:"is_helpful,omitempty"`
	Comment       *string   `json:"comment,omitempty"`
}
