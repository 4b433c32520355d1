package service

import (
	"context"
	"encoding/json"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/rag/feedback"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IFeedbackService interface {
	Submit(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
	Stats(ctx context.Context) (*dto.FeedbackStatsResponse, error)
	NeedsImprovement(ctx context.Context, limit int) ([]*dto.NeedsImprovementResponse, error)
}

type feedbackService struct {
	aggregator *feedback.Aggregator
	publisher  message.Publisher
	topicName  string
	logger     logger.ILogger
}

func NewFeedbackService(
	aggregator *feedback.Aggregator,
	publisher message.Publisher,
	topicName string,
	log logger.ILogger,
) IFeedbackService {
	return &feedbackService{
		aggregator: aggregator,
		publisher:  publisher,
		topicName:  topicName,
		logger:     log,
	}
}

// Submit stores the feedback synchronously, then hands it to the in-process
// topic for low-quality review. The topic never affects the response.
func (s *feedbackService) Submit(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	in := feedback.Input{
		QueryRecordID: req.QueryRecordId,
		Rating:        req.Rating,
		IsHelpful:     req.IsHelpful,
		Comment:       req.Comment,
	}
	if err := s.aggregator.Record(ctx, in); err != nil {
		return nil, err
	}

	s.enqueue(dto.FeedbackRecordedMessage{
		QueryRecordId: req.QueryRecordId,
		Rating:        req.Rating,
		IsHelpful:     req.IsHelpful,
		Comment:       req.Comment,
	})

	return &dto.FeedbackResponse{
		QueryRecordId: req.QueryRecordId,
		RecordedAt:    time.Now(),
	}, nil
}

func (s *feedbackService) enqueue(payload dto.FeedbackRecordedMessage) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.publisher.Publish(s.topicName, msg); err != nil {
		s.logger.Warn("FEEDBACK", "Failed to enqueue feedback for review", map[string]interface{}{
			"query_record_id": payload.QueryRecordId,
			"error":           err.Error(),
		})
	}
}

func (s *feedbackService) Stats(ctx context.Context) (*dto.FeedbackStatsResponse, error) {
	m, err := s.aggregator.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.FeedbackStatsResponse{
		TotalRecords:    m.TotalRecords,
		WithFeedback:    m.WithFeedback,
		Coverage:        m.Coverage,
		AverageRating:   m.AverageRating,
		RatingHistogram: m.RatingHistogram,
		Helpful:         m.Helpful,
		NotHelpful:      m.NotHelpful,
	}, nil
}

func (s *feedbackService) NeedsImprovement(ctx context.Context, limit int) ([]*dto.NeedsImprovementResponse, error) {
	records, err := s.aggregator.NeedsImprovement(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NeedsImprovementResponse, 0, len(records))
	for _, r := range records {
		res = append(res, &dto.NeedsImprovementResponse{
			Id:         r.Id,
			SessionId:  r.SessionId,
			QueryText:  r.QueryText,
			QueryType:  r.QueryType,
			AnswerText: r.AnswerText,
			Confidence: r.Confidence,
			Rating:     r.Rating,
			IsHelpful:  r.IsHelpful,
			Comment:    r.FeedbackComment,
			CreatedAt:  r.CreatedAt,
		})
	}
	return res, nil
}
