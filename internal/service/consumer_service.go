package service

import (
	"context"
	"encoding/json"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/events"
	"juris-rag-be/pkg/rag/feedback"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IConsumerService drains the in-process feedback topic.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	publisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		publisher:  publisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.FeedbackRecordedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("FEEDBACK", "Failed to unmarshal feedback message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // a retry would fail the same way
		return
	}

	cs.emit(ctx, events.NewFeedbackRecorded(payload.QueryRecordId, payload.Rating, payload.IsHelpful))

	if feedback.IsLowQuality(payload.Rating, payload.IsHelpful) {
		reason := lowQualityReason(payload)
		cs.logger.Warn("FEEDBACK", "Low quality answer flagged", map[string]interface{}{
			"query_record_id": payload.QueryRecordId,
			"reason":          reason,
		})
		cs.emit(ctx, events.NewLowQualityFlagged(payload.QueryRecordId, reason))
	}

	msg.Ack()
}

func (cs *consumerService) emit(ctx context.Context, event events.Event) {
	if cs.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("FEEDBACK", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func lowQualityReason(p dto.FeedbackRecordedMessage) string {
	if p.Rating != nil && *p.Rating <= feedback.LowRatingThreshold {
		return "low_rating"
	}
	return "not_helpful"
}

