package feedback

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxCommentLength             = 2000
	LowRatingThreshold           = 2
	DefaultNeedsImprovementLimit = 20
	MaxNeedsImprovementLimit     = 100
)

var ErrInvalidFeedback = errors.New("invalid feedback")

// Input is one feedback submission for an answered query.
type Input struct {
	QueryRecordID uuid.UUID
	Rating        *int
	IsHelpful     *bool
	Comment       *string
}

func (in Input) Validate() error {
	if in.QueryRecordID == uuid.Nil {
		return fmt.Errorf("%w: query_record_id is required", ErrInvalidFeedback)
	}
	if in.Rating == nil && in.IsHelpful == nil && in.Comment == nil {
		return fmt.Errorf("%w: at least one of rating, is_helpful or comment is required", ErrInvalidFeedback)
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidFeedback)
	}
	if in.Comment != nil && utf8.RuneCountInString(*in.Comment) > MaxCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidFeedback, MaxCommentLength)
	}
	return nil
}

// IsLowQuality flags a poor rating or an explicit "not helpful".
func IsLowQuality(rating *int, isHelpful *bool) bool {
	if rating != nil && *rating <= LowRatingThreshold {
		return true
	}
	return isHelpful != nil && !*isHelpful
}

// Counts are the raw aggregates read from storage.
type Counts struct {
	Total         int64
	WithFeedback  int64
	AverageRating float64
	Histogram     map[int]int64
	Helpful       int64
	NotHelpful    int64
}

type Metrics struct {
	TotalRecords    int64         `json:"total_records"`
	WithFeedback    int64         `json:"with_feedback"`
	Coverage        float64       `json:"feedback_coverage"`
	AverageRating   float64       `json:"average_rating"`
	RatingHistogram map[int]int64 `json:"rating_histogram"`
	Helpful         int64         `json:"helpful"`
	NotHelpful      int64         `json:"not_helpful"`
}

// Compute derives the reported metrics. The histogram always has keys 1..5.
func Compute(c Counts) Metrics {
	m := Metrics{
		TotalRecords:    c.Total,
		WithFeedback:    c.WithFeedback,
		AverageRating:   c.AverageRating,
		RatingHistogram: make(map[int]int64, 5),
		Helpful:         c.Helpful,
		NotHelpful:      c.NotHelpful,
	}
	for r := 1; r <= 5; r++ {
		m.RatingHistogram[r] = c.Histogram[r]
	}
	if c.Total > 0 {
		m.Coverage = float64(c.WithFeedback) / float64(c.Total)
	}
	return m
}

// ClampLimit applies the default and maximum size of the needs-improvement view.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultNeedsImprovementLimit
	}
	if limit > MaxNeedsImprovementLimit {
		return MaxNeedsImprovementLimit
	}
	return limit
}
