package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"site_crawler/internal/logger"
	"site_crawler/internal/models"
)

const (
	crawlIDHeader = "X-Crawl-ID"
	greeting      = "Hello from site_crawler!"
)

// Crawler runs one crawl to completion.
type Crawler interface {
	CrawlSite(ctx context.Context, req models.CrawlRequest) ([]models.PageResult, error)
}

// Archive lists the pages a crawl archived.
type Archive interface {
	CrawlDocuments(ctx context.Context, crawlID string) ([]models.Document, error)
}

// CrawlRequest is the body of POST /crawl. MaxDepth is the older name of
// PageBudget and is only read when PageBudget is absent.
type CrawlRequest struct {
	URL        string `json:"url" binding:"required"`
	PageBudget int    `json:"pageBudget" binding:"omitempty,min=1"`
	MaxDepth   int    `json:"maxDepth" binding:"omitempty,min=1"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	crawler       Crawler
	archive       Archive
	log           logger.Interface
	defaultBudget int
}

func NewHandler(crawler Crawler, log logger.Interface, defaultBudget int) *Handler {
	if defaultBudget < 1 {
		defaultBudget = models.DefaultPageBudget
	}
	return &Handler{crawler: crawler, log: log, defaultBudget: defaultBudget}
}

// WithArchive enables GET /crawls/:id/documents.
func (h *Handler) WithArchive(archive Archive) *Handler {
	h.archive = archive
	return h
}

func (h *Handler) budget(req CrawlRequest) int {
	switch {
	case req.PageBudget > 0:
		return req.PageBudget
	case req.MaxDepth > 0:
		return req.MaxDepth
	default:
		return h.defaultBudget
	}
}

// Crawl handles POST /crawl. The response holds every page that passed
// extraction, in discovery order, and is an empty array when none did.
func (h *Handler) Crawl(c *gin.Context) {
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	crawlID := uuid.New().String()
	c.Header(crawlIDHeader, crawlID)

	results, err := h.crawler.CrawlSite(c.Request.Context(), models.CrawlRequest{
		ID:         crawlID,
		RootURL:    req.URL,
		PageBudget: h.budget(req),
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error("Crawl failed", "crawl_id", crawlID, "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "crawl failed"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// CrawlDocuments handles GET /crawls/:id/documents. A page re-archived by a
// later crawl is listed under that crawl only.
func (h *Handler) CrawlDocuments(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "archiving is disabled"})
		return
	}

	crawlID := c.Param("id")
	docs, err := h.archive.CrawlDocuments(c.Request.Context(), crawlID)
	if err != nil {
		h.log.Error("Failed to list archived pages", "crawl_id", crawlID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "archive lookup failed"})
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (h *Handler) Index(c *gin.Context) {
	c.String(http.StatusOK, greeting)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
