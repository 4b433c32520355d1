package service

import (
	"context"
	"fmt"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/internal/repository/unitofwork"
	"juris-rag-be/pkg/events"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/store"

	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

// ILegalQueryService answers questions and persists each answered query.
type ILegalQueryService interface {
	// Ask serves the stateless HTTP API. req.Context only feeds term carry-over.
	Ask(ctx context.Context, req *dto.LegalQueryRequest) (*dto.LegalQueryResponse, error)
	// Answer serves a live session whose history is known.
	Answer(ctx context.Context, sessionID, text string, history []store.Turn, onStatus pipeline.StatusFunc) (*dto.LegalQueryResponse, error)
}

type legalQueryService struct {
	uowFactory unitofwork.RepositoryFactory
	pipeline   *pipeline.Pipeline
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewLegalQueryService(
	uowFactory unitofwork.RepositoryFactory,
	ragPipeline *pipeline.Pipeline,
	publisher events.Publisher,
	log logger.ILogger,
) ILegalQueryService {
	return &legalQueryService{
		uowFactory: uowFactory,
		pipeline:   ragPipeline,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *legalQueryService) Ask(ctx context.Context, req *dto.LegalQueryRequest) (*dto.LegalQueryResponse, error) {
	q := query.Query{
		Text:       req.Query,
		SessionID:  req.SessionId,
		PriorTurns: req.Context,
	}
	return s.run(ctx, q, nil, nil)
}

func (s *legalQueryService) Answer(ctx context.Context, sessionID, text string, history []store.Turn, onStatus pipeline.StatusFunc) (*dto.LegalQueryResponse, error) {
	q := query.Query{
		Text:       text,
		SessionID:  sessionID,
		PriorTurns: store.Queries(history),
	}
	return s.run(ctx, q, history, onStatus)
}

func (s *legalQueryService) run(ctx context.Context, q query.Query, history []store.Turn, onStatus pipeline.StatusFunc) (*dto.LegalQueryResponse, error) {
	result, err := s.pipeline.Run(ctx, q, history, onStatus)
	if err != nil {
		return nil, err
	}

	res := toLegalQueryResponse(result)

	// Synthesis was reached, so the record is kept even if the caller went away.
	persistCtx := context.WithoutCancel(ctx)
	recordID, err := s.persist(persistCtx, q.SessionID, result)
	if err != nil {
		s.logger.Error("QUERY", "Failed to persist query record", map[string]interface{}{
			"session_id": q.SessionID,
			"error":      err.Error(),
		})
		return res, nil
	}
	res.QueryRecordId = &recordID

	s.publish(persistCtx, events.NewQueryAnswered(
		recordID,
		q.SessionID,
		string(result.Query.Intent),
		result.DocumentsFound(),
		len(result.Citations),
		result.Answer.Confidence,
	))

	return res, nil
}

func (s *legalQueryService) persist(ctx context.Context, sessionID string, result *pipeline.Result) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer uow.Rollback()

	now := time.Now()
	record := &entity.QueryRecord{
		Id:               uuid.New(),
		SessionId:        sessionID,
		QueryText:        result.Query.Original,
		QueryType:        string(result.Query.Intent),
		ResultCount:      result.DocumentsFound(),
		TopSimilarity:    result.TopSimilarity(),
		AnswerText:       result.Answer.Text,
		Confidence:       result.Answer.Confidence,
		LatencyMs:        result.Latency.Milliseconds(),
		PromptTokens:     result.Answer.PromptTokens,
		CompletionTokens: result.Answer.CompletionTokens,
		TokensUsed:       result.Answer.TokensUsed,
		CreatedAt:        now,
	}
	if err := uow.QueryRecordRepository().Create(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("create query record: %w", err)
	}

	if len(result.Citations) > 0 {
		citations := make([]*entity.QueryCitation, len(result.Citations))
		for i, c := range result.Citations {
			citations[i] = &entity.QueryCitation{
				Id:             uuid.New(),
				QueryRecordId:  record.Id,
				MarkerIndex:    c.MarkerIndex,
				PassageId:      c.PassageID,
				Bibliographic:  c.Bibliographic,
				Excerpt:        c.Excerpt,
				RelevanceScore: c.RelevanceScore,
				ExternalLink:   c.ExternalLink,
				Metadata:       c.Metadata.Map(),
				CreatedAt:      now,
			}
		}
		if err := uow.QueryCitationRepository().CreateBulk(ctx, citations); err != nil {
			return uuid.Nil, fmt.Errorf("create citations: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return record.Id, nil
}

func (s *legalQueryService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("QUERY", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func toLegalQueryResponse(result *pipeline.Result) *dto.LegalQueryResponse {
	citations := make([]dto.CitationDTO, len(result.Citations))
	for i, c := range result.Citations {
		citations[i] = dto.CitationDTO{
			MarkerIndex:    c.MarkerIndex,
			PassageId:      c.PassageID,
			Bibliographic:  c.Bibliographic,
			Excerpt:        c.Excerpt,
			RelevanceScore: c.RelevanceScore,
			ExternalLink:   c.ExternalLink,
			Metadata:       c.Metadata.Map(),
		}
	}

	return &dto.LegalQueryResponse{
		Answer:     result.Answer.Text,
		Confidence: result.Answer.Confidence,
		Citations:  citations,
		Metadata: dto.QueryMetadataDTO{
			DocumentsFound:   result.DocumentsFound(),
			QueryType:        string(result.Query.Intent),
			Complexity:       string(result.Query.Complexity),
			ProcessingTimeMs: result.Latency.Milliseconds(),
			TokensUsed:       result.Answer.TokensUsed,
		},
	}
}
