// Package api implements the HTTP API for the article store.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/newswatch/internal/logger"
	"github.com/jonesrussell/newswatch/internal/query"
)

const defaultPage = 1

// ArticleService is the query surface the handlers depend on.
type ArticleService interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, page, pageSize int, sourceName string) (*query.ListResult, error)
	Answer(ctx context.Context, req query.SearchRequest) (*query.AnswerResult, error)
}

// ArticlesHandler handles article-related HTTP requests.
type ArticlesHandler struct {
	service ArticleService
	log     logger.Interface
}

// NewArticlesHandler creates a new articles handler.
func NewArticlesHandler(service ArticleService, log logger.Interface) *ArticlesHandler {
	return &ArticlesHandler{service: service, log: log.WithComponent("api")}
}

// Register mounts the article routes on the router.
func (h *ArticlesHandler) Register(router gin.IRouter) {
	router.GET("/articles/count", h.CountArticles)
	router.GET("/articles", h.ListArticles)
	router.POST("/articles/search", h.SearchArticles)
}

// CountArticles handles GET /articles/count.
func (h *ArticlesHandler) CountArticles(c *gin.Context) {
	total, err := h.service.Count(c.Request.Context())
	if err != nil {
		h.log.Error("count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_articles": total})
}

// ListArticles handles GET /articles.
func (h *ArticlesHandler) ListArticles(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(query.DefaultPageSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size"})
		return
	}

	result, err := h.service.List(c.Request.Context(), page, pageSize, c.Query("source_name"))
	if err != nil {
		if errors.Is(err, query.ErrInvalidPage) || errors.Is(err, query.ErrInvalidPageSize) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve articles"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchArticlesRequest is the POST /articles/search payload.
type SearchArticlesRequest struct {
	Prompt          string `json:"prompt" binding:"required"`
	SystemPrompt    string `json:"system_prompt"`
	Model           string `json:"model"`
	Limit           int    `json:"limit"`
	PublishedAfter  string `json:"published_after"`
	PublishedBefore string `json:"published_before"`
}

// SearchArticles handles POST /articles/search.
func (h *ArticlesHandler) SearchArticles(c *gin.Context) {
	var req SearchArticlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	publishedAfter, err := parseSearchTime(req.PublishedAfter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid published_after: " + err.Error()})
		return
	}
	publishedBefore, err := parseSearchTime(req.PublishedBefore)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid published_before: " + err.Error()})
		return
	}

	result, err := h.service.Answer(c.Request.Context(), query.SearchRequest{
		Prompt:          req.Prompt,
		SystemPrompt:    req.SystemPrompt,
		Model:           req.Model,
		Limit:           req.Limit,
		PublishedAfter:  publishedAfter,
		PublishedBefore: publishedBefore,
	})
	if err != nil {
		if errors.Is(err, query.ErrEmptyPrompt) || errors.Is(err, query.ErrInvalidLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search articles"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseSearchTime parses an optional RFC 3339 timestamp.
func parseSearchTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
