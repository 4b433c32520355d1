package specification

import "gorm.io/gorm"

// NeedsImprovement matches records rated 2 or lower or marked not helpful.
type NeedsImprovement struct {
	MaxRating int
}

func (s NeedsImprovement) Apply(db *gorm.DB) *gorm.DB {
	maxRating := s.MaxRating
	if maxRating <= 0 {
		maxRating = 2
	}
	return db.Where("((rating IS NOT NULL AND rating <= ?) OR is_helpful = ?)", maxRating, false)
}

// WithFeedback matches records carrying any feedback field.
type WithFeedback struct{}

func (s WithFeedback) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(rating IS NOT NULL OR is_helpful IS NOT NULL OR feedback_comment IS NOT NULL)")
}

// HelpfulIs filters on the usefulness flag.
type HelpfulIs struct {
	Helpful bool
}

func (s HelpfulIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_helpful = ?", s.Helpful)
}
