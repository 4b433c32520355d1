package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeQueryAnswered     = "QUERY_ANSWERED"
	TypeFeedbackRecorded  = "FEEDBACK_RECORDED"
	TypeLowQualityFlagged = "LOW_QUALITY_FLAGGED"
)

func NewQueryAnswered(recordID uuid.UUID, sessionID, queryType string, documents, citations int, confidence float64) BaseEvent {
	return BaseEvent{
		Type: TypeQueryAnswered,
		Data: map[string]interface{}{
			"query_record_id": recordID.String(),
			"session_id":      sessionID,
			"query_type":      queryType,
			"documents_found": documents,
			"citations":       citations,
			"confidence":      confidence,
		},
		OccurredAt: time.Now(),
	}
}

func NewFeedbackRecorded(recordID uuid.UUID, rating *int, isHelpful *bool) BaseEvent {
	data := map[string]interface{}{"query_record_id": recordID.String()}
	if rating != nil {
		data["rating"] = *rating
	}
	if isHelpful != nil {
		data["is_helpful"] = *isHelpful
	}
	return BaseEvent{Type: TypeFeedbackRecorded, Data: data, OccurredAt: time.Now()}
}

func NewLowQualityFlagged(recordID uuid.UUID, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeLowQualityFlagged,
		Data: map[string]interface{}{
			"query_record_id": recordID.String(),
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}
