package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
	"github.com/jonesrussell/newswatch/internal/query"
)

type fakeService struct {
	total     int
	countErr  error
	list      *query.ListResult
	listErr   error
	answer    *query.AnswerResult
	answerErr error
	gotSearch query.SearchRequest
}

func (f *fakeService) Count(_ context.Context) (int, error) {
	return f.total, f.countErr
}

func (f *fakeService) List(_ context.Context, page, pageSize int, _ string) (*query.ListResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.list != nil {
		return f.list, nil
	}
	return &query.ListResult{Page: page, PageSize: pageSize, Articles: []domain.Article{}}, nil
}

func (f *fakeService) Answer(_ context.Context, req query.SearchRequest) (*query.AnswerResult, error) {
	f.gotSearch = req
	return f.answer, f.answerErr
}

func newTestRouter(service *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewArticlesHandler(service, logger.NewNoOp()).Register(router)
	return router
}

func TestCountArticles(t *testing.T) {
	router := newTestRouter(&fakeService{total: 128})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/count", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 128, body["total_articles"])
}

func TestCountArticlesFailure(t *testing.T) {
	router := newTestRouter(&fakeService{countErr: errors.New("db down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/count", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListArticlesDefaults(t *testing.T) {
	service := &fakeService{}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result query.ListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, query.DefaultPageSize, result.PageSize)
}

func TestListArticlesInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"non numeric page", "/articles?page=abc"},
		{"non numeric page size", "/articles?page_size=xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListArticlesValidationError(t *testing.T) {
	router := newTestRouter(&fakeService{listErr: query.ErrInvalidPageSize})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles?page_size=500", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchArticles(t *testing.T) {
	service := &fakeService{answer: &query.AnswerResult{
		Answer: "BTC rose on ETF inflows.",
		Sources: []domain.SourceInfo{
			{Name: "Coindesk", URL: "https://www.coindesk.com"},
		},
	}}
	router := newTestRouter(service)

	body := `{"prompt":"why did btc move?","limit":3,"published_after":"2025-06-01T00:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result query.AnswerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "BTC rose on ETF inflows.", result.Answer)
	require.Len(t, result.Sources, 1)

	assert.Equal(t, "why did btc move?", service.gotSearch.Prompt)
	assert.Equal(t, 3, service.gotSearch.Limit)
	require.NotNil(t, service.gotSearch.PublishedAfter)
}

func TestSearchArticlesMissingPrompt(t *testing.T) {
	router := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchArticlesBadTimestamp(t *testing.T) {
	router := newTestRouter(&fakeService{})

	body := `{"prompt":"q","published_after":"yesterday"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchArticlesValidationError(t *testing.T) {
	router := newTestRouter(&fakeService{answerErr: query.ErrInvalidLimit})

	body := `{"prompt":"q","limit":999}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchArticlesInternalError(t *testing.T) {
	router := newTestRouter(&fakeService{answerErr: errors.New("openai unavailable")})

	body := `{"prompt":"q"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
