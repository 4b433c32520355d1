package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"juris-rag-be/internal/entity"
	"juris-rag-be/internal/pkg/testdb"
	"juris-rag-be/internal/repository/contract"
	"juris-rag-be/internal/repository/specification"
	"juris-rag-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func seed(t *testing.T, uowFactory unitofwork.RepositoryFactory, query string, at time.Time) *entity.QueryRecord {
	t.Helper()
	rec := &entity.QueryRecord{
		SessionId:  "s1",
		QueryText:  query,
		QueryType:  "case-law-search",
		AnswerText: "resposta para " + query,
		Confidence: 0.7,
		CreatedAt:  at,
	}
	require.NoError(t, uowFactory.NewUnitOfWork(context.Background()).QueryRecordRepository().Create(context.Background(), rec))
	return rec
}

func TestRecordUpdatesRatingAndAverage(t *testing.T) {
	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(testdb.Open(t))
	agg := NewAggregator(uowFactory)

	first := seed(t, uowFactory, "dano moral", time.Now().Add(-time.Hour))
	second := seed(t, uowFactory, "usucapião", time.Now())

	require.NoError(t, agg.Record(ctx, Input{QueryRecordID: first.Id, Rating: intPtr(3)}))
	before, err := agg.Metrics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, before.AverageRating, 1e-9)

	require.NoError(t, agg.Record(ctx, Input{QueryRecordID: second.Id, Rating: intPtr(5)}))

	after, err := agg.Metrics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, after.AverageRating, 1e-9)
	assert.Equal(t, int64(2), after.TotalRecords)
	assert.Equal(t, int64(2), after.WithFeedback)
	assert.InDelta(t, 1.0, after.Coverage, 1e-9)
	assert.Equal(t, int64(1), after.RatingHistogram[5])
	assert.Equal(t, int64(1), after.RatingHistogram[3])
	assert.Equal(t, int64(0), after.RatingHistogram[1])

	stored, err := uowFactory.NewUnitOfWork(ctx).QueryRecordRepository().FindOne(ctx, specification.ByID{ID: second.Id})
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	assert.Equal(t, "usucapião", stored.QueryText)
	assert.Equal(t, "resposta para usucapião", stored.AnswerText)
	assert.NotNil(t, stored.FeedbackAt)
}

func TestRecordUnknownIdIsNotFound(t *testing.T) {
	agg := NewAggregator(unitofwork.NewRepositoryFactory(testdb.Open(t)))

	err := agg.Record(context.Background(), Input{QueryRecordID: uuid.New(), Rating: intPtr(4)})

	assert.True(t, errors.Is(err, contract.ErrRecordNotFound))
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	agg := NewAggregator(unitofwork.NewRepositoryFactory(testdb.Open(t)))
	id := uuid.New()

	tests := []struct {
		name string
		in   Input
	}{
		{name: "no fields", in: Input{QueryRecordID: id}},
		{name: "rating too high", in: Input{QueryRecordID: id, Rating: intPtr(6)}},
		{name: "rating too low", in: Input{QueryRecordID: id, Rating: intPtr(0)}},
		{name: "comment too long", in: Input{QueryRecordID: id, Comment: strPtr(strings.Repeat("x", MaxCommentLength+1))}},
		{name: "missing id", in: Input{Rating: intPtr(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := agg.Record(context.Background(), tt.in)
			assert.True(t, errors.Is(err, ErrInvalidFeedback))
		})
	}
}

func TestNeedsImprovement(t *testing.T) {
	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(testdb.Open(t))
	agg := NewAggregator(uowFactory)
	base := time.Now().Add(-time.Hour)

	good := seed(t, uowFactory, "bom", base)
	low := seed(t, uowFactory, "nota baixa", base.Add(time.Minute))
	unhelpful := seed(t, uowFactory, "inútil", base.Add(2*time.Minute))
	seed(t, uowFactory, "sem feedback", base.Add(3*time.Minute))

	require.NoError(t, agg.Record(ctx, Input{QueryRecordID: good.Id, Rating: intPtr(5), IsHelpful: boolPtr(true)}))
	require.NoError(t, agg.Record(ctx, Input{QueryRecordID: low.Id, Rating: intPtr(2)}))
	require.NoError(t, agg.Record(ctx, Input{QueryRecordID: unhelpful.Id, IsHelpful: boolPtr(false), Comment: strPtr("não respondeu")}))

	got, err := agg.NeedsImprovement(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, unhelpful.Id, got[0].Id)
	assert.Equal(t, low.Id, got[1].Id)

	limited, err := agg.NeedsImprovement(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	m, err := agg.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), m.TotalRecords)
	assert.Equal(t, int64(3), m.WithFeedback)
	assert.Equal(t, int64(1), m.Helpful)
	assert.Equal(t, int64(1), m.NotHelpful)
	assert.InDelta(t, 0.75, m.Coverage, 1e-9)
}

func TestComputeEmpty(t *testing.T) {
	m := Compute(Counts{})

	assert.Equal(t, 0.0, m.Coverage)
	assert.Len(t, m.RatingHistogram, 5)
}

func TestIsLowQuality(t *testing.T) {
	assert.True(t, IsLowQuality(intPtr(2), nil))
	assert.True(t, IsLowQuality(intPtr(5), boolPtr(false)))
	assert.False(t, IsLowQuality(intPtr(3), boolPtr(true)))
	assert.False(t, IsLowQuality(nil, nil))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultNeedsImprovementLimit, ClampLimit(0))
	assert.Equal(t, MaxNeedsImprovementLimit, ClampLimit(1000))
	assert.Equal(t, 7, ClampLimit(7))
}
