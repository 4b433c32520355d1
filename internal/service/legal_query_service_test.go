package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/internal/pkg/testdb"
	"juris-rag-be/internal/repository/contract"
	"juris-rag-be/internal/repository/specification"
	"juris-rag-be/internal/repository/unitofwork"
	"juris-rag-be/pkg/events"
	"juris-rag-be/pkg/rag/feedback"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/rag/pipeline/pipelinetest"
	"juris-rag-be/pkg/rag/response"
	"juris-rag-be/pkg/store"
	"juris-rag-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func legalHits() []vectorindex.Hit {
	meta := store.PassageMetadata{Type: store.DocumentTypeCaseLaw, Court: "STJ", CaseNumber: "0001234-56.2024.8.26.0100"}
	return []vectorindex.Hit{
		{ID: "p1", Text: "A inscrição indevida gera dano moral presumido.", Metadata: meta, Distance: 0.1},
		{ID: "p2", Text: "O valor deve ser razoável.", Metadata: meta, Distance: 0.2},
	}
}

type queryFixture struct {
	uowFactory unitofwork.RepositoryFactory
	model      *pipelinetest.LLM
	events     *recordingPublisher
	service    ILegalQueryService
}

func newQueryFixture(t *testing.T, hits []vectorindex.Hit) *queryFixture {
	t.Helper()
	f := &queryFixture{
		uowFactory: unitofwork.NewRepositoryFactory(testdb.Open(t)),
		model:      &pipelinetest.LLM{Reply: strings.Repeat("fundamento ", 30) + "conforme [Doc 1]."},
		events:     &recordingPublisher{},
	}
	p := pipelinetest.New(&pipelinetest.Index{Hits: hits}, f.model)
	f.service = NewLegalQueryService(f.uowFactory, p, f.events, logger.NewNopLogger())
	return f
}

func TestAskPersistsRecordAndCitations(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t, legalHits())

	res, err := f.service.Ask(ctx, &dto.LegalQueryRequest{Query: "dano moral por negativação", SessionId: "s1"})

	require.NoError(t, err)
	require.NotNil(t, res.QueryRecordId)
	assert.Equal(t, 2, res.Metadata.DocumentsFound)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "p1", res.Citations[0].PassageId)
	assert.Equal(t, "STJ", res.Citations[0].Metadata["court"])

	uow := f.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.QueryRecordRepository().FindOne(ctx, specification.ByID{ID: *res.QueryRecordId})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "s1", record.SessionId)
	assert.Equal(t, "dano moral por negativação", record.QueryText)
	assert.Equal(t, 2, record.ResultCount)
	assert.InDelta(t, 0.9, record.TopSimilarity, 1e-9)
	assert.Equal(t, 580, record.TokensUsed)
	assert.False(t, record.HasFeedback())

	citations, err := uow.QueryCitationRepository().FindByQueryRecordId(ctx, record.Id)
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, 1, citations[0].MarkerIndex)

	assert.Equal(t, []string{events.TypeQueryAnswered}, f.events.types())
}

func TestAskWithoutDocumentsStillRecords(t *testing.T) {
	ctx := context.Background()
	f := newQueryFixture(t, nil)

	res, err := f.service.Ask(ctx, &dto.LegalQueryRequest{Query: "usucapião de bem público", SessionId: "s1"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, 0, res.Metadata.DocumentsFound)
	assert.Empty(t, res.Citations)
	assert.Equal(t, response.NoDocumentsMessage, res.Answer)
	require.NotNil(t, res.QueryRecordId)
	assert.Equal(t, 0, f.model.Calls)
}

func TestAnswerCancelledEarlyPersistsNothing(t *testing.T) {
	f := newQueryFixture(t, legalHits())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Answer(ctx, "s1", "dano moral", nil, nil)
	require.Error(t, err)

	count, err := f.uowFactory.NewUnitOfWork(context.Background()).QueryRecordRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, f.events.types())
}

func TestAnswerReportsStagesInOrder(t *testing.T) {
	f := newQueryFixture(t, legalHits())
	var stages []pipeline.Stage

	_, err := f.service.Answer(context.Background(), "s1", "dano moral", []store.Turn{{Query: "q", Answer: "a"}}, func(s pipeline.Stage) {
		stages = append(stages, s)
	})

	require.NoError(t, err)
	assert.Equal(t, []pipeline.Stage{pipeline.StageProcessing, pipeline.StageSearching, pipeline.StageGenerating}, stages)
}

func TestFeedbackFlowFlagsLowQuality(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newQueryFixture(t, legalHits())
	answered, err := f.service.Ask(ctx, &dto.LegalQueryRequest{Query: "dano moral", SessionId: "s1"})
	require.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	busEvents := &recordingPublisher{}
	consumer := NewConsumerService(pubSub, "feedback.recorded", busEvents, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	svc := NewFeedbackService(feedback.NewAggregator(f.uowFactory), pubSub, "feedback.recorded", logger.NewNopLogger())
	rating := 1
	_, err = svc.Submit(ctx, &dto.FeedbackRequest{QueryRecordId: *answered.QueryRecordId, Rating: &rating})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(busEvents.types()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.TypeFeedbackRecorded, events.TypeLowQualityFlagged}, busEvents.types())

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, stats.AverageRating, 1e-9)
	assert.Equal(t, int64(1), stats.RatingHistogram[1])

	flagged, err := svc.NeedsImprovement(ctx, 0)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "dano moral", flagged[0].QueryText)
}

func TestFeedbackUnknownRecord(t *testing.T) {
	f := newQueryFixture(t, nil)
	svc := NewFeedbackService(feedback.NewAggregator(f.uowFactory), nil, "", logger.NewNopLogger())
	helpful := true

	_, err := svc.Submit(context.Background(), &dto.FeedbackRequest{QueryRecordId: uuid.New(), IsHelpful: &helpful})

	assert.True(t, errors.Is(err, contract.ErrRecordNotFound))
}
