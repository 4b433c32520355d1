package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/serverutils"
	"juris-rag-be/internal/repository/contract"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryService struct {
	got *dto.LegalQueryRequest
}

func (f *fakeQueryService) Ask(ctx context.Context, req *dto.LegalQueryRequest) (*dto.LegalQueryResponse, error) {
	f.got = req
	id := uuid.New()
	return &dto.LegalQueryResponse{
		QueryRecordId: &id,
		Answer:        "Resposta [Doc 1].",
		Confidence:    0.8,
		Citations:     []dto.CitationDTO{{MarkerIndex: 1, PassageId: "p1"}},
		Metadata:      dto.QueryMetadataDTO{DocumentsFound: 1, QueryType: "case-law-search"},
	}, nil
}

func (f *fakeQueryService) Answer(ctx context.Context, sessionID, text string, history []store.Turn, onStatus pipeline.StatusFunc) (*dto.LegalQueryResponse, error) {
	return nil, nil
}

type fakeFeedbackService struct {
	gotLimit int
	err      error
}

func (f *fakeFeedbackService) Submit(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FeedbackResponse{QueryRecordId: req.QueryRecordId}, nil
}

func (f *fakeFeedbackService) Stats(ctx context.Context) (*dto.FeedbackStatsResponse, error) {
	return &dto.FeedbackStatsResponse{TotalRecords: 3, AverageRating: 4}, nil
}

func (f *fakeFeedbackService) NeedsImprovement(ctx context.Context, limit int) ([]*dto.NeedsImprovementResponse, error) {
	f.gotLimit = limit
	return []*dto.NeedsImprovementResponse{}, nil
}

func newApp(q *fakeQueryService, fb *fakeFeedbackService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewLegalQueryController(q).RegisterRoutes(api)
	NewFeedbackController(fb).RegisterRoutes(api)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]interface{}, *http.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out, resp
}

func TestQueryUsesSessionHeader(t *testing.T) {
	q := &fakeQueryService{}
	app := newApp(q, &fakeFeedbackService{})

	status, body, resp := do(t, app, http.MethodPost, "/api/legal/v1/query",
		`{"query":"dano moral no STJ","context":["o que é dano moral?"]}`,
		map[string]string{serverutils.SessionHeader: "sess-42"})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "sess-42", q.got.SessionId)
	assert.Equal(t, []string{"o que é dano moral?"}, q.got.Context)
	assert.Equal(t, "sess-42", resp.Header.Get(serverutils.SessionHeader))

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Resposta [Doc 1].", data["answer"])
	meta := data["metadata"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["documents_found"])
}

func TestQueryRequiresText(t *testing.T) {
	app := newApp(&fakeQueryService{}, &fakeFeedbackService{})

	status, body, _ := do(t, app, http.MethodPost, "/api/legal/v1/query", `{"session_id":"s"}`, nil)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	fields := body["data"].(map[string]interface{})
	assert.Equal(t, "is required", fields["query"])
}

func TestFeedbackUnknownRecordIs404(t *testing.T) {
	fb := &fakeFeedbackService{err: fmt.Errorf("update feedback: %w", contract.ErrRecordNotFound)}
	app := newApp(&fakeQueryService{}, fb)

	status, body, _ := do(t, app, http.MethodPost, "/api/legal/v1/feedback",
		fmt.Sprintf(`{"query_record_id":"%s","rating":4}`, uuid.New()), nil)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestFeedbackRejectsRatingOutOfRange(t *testing.T) {
	app := newApp(&fakeQueryService{}, &fakeFeedbackService{})

	status, body, _ := do(t, app, http.MethodPost, "/api/legal/v1/feedback",
		fmt.Sprintf(`{"query_record_id":"%s","rating":9}`, uuid.New()), nil)

	assert.Equal(t, fiber.StatusBadRequest, status)
	fields := body["data"].(map[string]interface{})
	assert.Equal(t, "must be at most 5", fields["rating"])
}

func TestFeedbackStatsAndNeedsImprovement(t *testing.T) {
	fb := &fakeFeedbackService{}
	app := newApp(&fakeQueryService{}, fb)

	status, body, _ := do(t, app, http.MethodGet, "/api/legal/v1/feedback/stats", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(4), body["data"].(map[string]interface{})["average_rating"])

	status, _, _ = do(t, app, http.MethodGet, "/api/legal/v1/feedback/needs-improvement?limit=5", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 5, fb.gotLimit)
}
