package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"site_crawler/internal/document"
	"site_crawler/internal/extractor"
	"site_crawler/internal/fetcher"
	"site_crawler/internal/logger"
	"site_crawler/internal/models"
	urlqueue "site_crawler/internal/url_queue"
)

// ResultSink receives every page that passes extraction.
type ResultSink interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
}

// Spider crawls one origin at a time. It keeps no state between crawls and
// can be shared by concurrent callers as long as its fetcher can.
type Spider struct {
	fetcher   fetcher.Fetcher
	extractor *extractor.Extractor
	scopeMode urlqueue.ScopeMode
	sink      ResultSink
	log       logger.Interface
}

type Option func(*Spider)

func WithScopeMode(mode urlqueue.ScopeMode) Option {
	return func(s *Spider) {
		s.scopeMode = mode
	}
}

func WithExtractor(e *extractor.Extractor) Option {
	return func(s *Spider) {
		s.extractor = e
	}
}

func WithResultSink(sink ResultSink) Option {
	return func(s *Spider) {
		s.sink = sink
	}
}

func WithLogger(log logger.Interface) Option {
	return func(s *Spider) {
		s.log = log
	}
}

func NewSpider(f fetcher.Fetcher, opts ...Option) *Spider {
	s := &Spider{
		fetcher:   f,
		extractor: extractor.New(models.MinContentLength),
		scopeMode: urlqueue.ScopeStrict,
		log:       logger.NewNoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover walks the links of rootURL's origin and returns the pages it
// accepted, at most pageBudget of them, in the order they were accepted.
//
// The frontier is a stack: the links of a page are pushed in document order
// and the last one is visited first, so the walk is depth-first. A page is
// accepted once it has been fetched as text/html and parsed. Failures skip
// the URL; only an invalid root or a cancelled ctx is returned as an error.
func (s *Spider) Discover(ctx context.Context, rootURL string, pageBudget int) ([]string, error) {
	return s.discover(ctx, s.log, rootURL, pageBudget)
}

func (s *Spider) discover(ctx context.Context, log logger.Interface, rootURL string, pageBudget int) ([]string, error) {
	root, err := urlqueue.NormalizeRoot(rootURL)
	if err != nil {
		return nil, err
	}
	scope, err := urlqueue.NewScope(root, s.scopeMode)
	if err != nil {
		return nil, err
	}
	if pageBudget < 1 {
		pageBudget = 1
	}

	frontier := urlqueue.NewFrontier(root)
	visited := urlqueue.NewVisitedSet()
	accepted := make([]string, 0, pageBudget)

	for frontier.Len() > 0 && len(accepted) < pageBudget {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}

		current, ok := frontier.Pop()
		if !ok || current == "" || visited.Has(current) {
			continue
		}
		visited.Add(current)

		doc, err := s.load(ctx, current)
		if err != nil {
			logSkip(log, "discover", current, err)
			continue
		}

		accepted = append(accepted, current)
		links := s.scopedLinks(doc, current, scope, visited)
		frontier.Push(links...)

		log.Debug("Page accepted",
			"url", current,
			"links", len(links),
			"accepted", len(accepted),
			"frontier", frontier.Len(),
		)
	}

	return accepted, nil
}

// CrawlSite discovers the pages of req.RootURL and extracts their content,
// one page at a time and in discovery order. Pages that fail to fetch, parse
// or extract are left out of the result without an error.
func (s *Spider) CrawlSite(ctx context.Context, req models.CrawlRequest) ([]models.PageResult, error) {
	crawlID := req.ID
	if crawlID == "" {
		crawlID = uuid.New().String()
	}
	log := s.log.With("crawl_id", crawlID)
	start := time.Now()

	log.Info("Crawl started", "root", req.RootURL, "page_budget", req.Budget())

	urls, err := s.discover(ctx, log, req.RootURL, req.Budget())
	if err != nil {
		if errors.Is(err, models.ErrInvalidURL) {
			log.Warn("Crawl rejected", "root", req.RootURL, "error", err)
		}
		return nil, err
	}

	results := make([]models.PageResult, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		article, err := s.extract(ctx, u)
		if err != nil {
			logSkip(log, "extract", u, err)
			continue
		}

		result := models.PageResult{URL: u, Content: article.Text}
		results = append(results, result)
		s.archive(ctx, log, crawlID, urls[0], article, result)
	}

	log.Info("Crawl finished",
		"root", req.RootURL,
		"accepted", len(urls),
		"results", len(results),
		"duration", time.Since(start),
	)
	return results, nil
}

// load fetches pageURL and parses it when the response is HTML.
func (s *Spider) load(ctx context.Context, pageURL string) (*document.Document, error) {
	resp, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if !document.IsHTML(resp.ContentType) {
		return nil, models.NewStageError(models.SkipUnsupportedContentType, pageURL,
			fmt.Errorf("content type %s", quoteOrNone(resp.ContentType)))
	}
	return document.Parse(resp.Body, pageURL)
}

func (s *Spider) extract(ctx context.Context, pageURL string) (*models.ExtractedArticle, error) {
	doc, err := s.load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(doc)
}

// scopedLinks resolves the anchors of doc against pageURL and keeps those in
// scope that were not visited yet, in document order.
func (s *Spider) scopedLinks(doc *document.Document, pageURL string, scope *urlqueue.Scope, visited *urlqueue.VisitedSet) []string {
	var links []string
	for _, href := range doc.Links() {
		link, err := urlqueue.NormalizeURL(href, pageURL)
		if err != nil {
			continue
		}
		if !scope.InScope(link) || visited.Has(link) {
			continue
		}
		links = append(links, link)
	}
	return links
}

func (s *Spider) archive(ctx context.Context, log logger.Interface, crawlID, rootURL string, article *models.ExtractedArticle, result models.PageResult) {
	if s.sink == nil {
		return
	}
	doc := newDocument(crawlID, rootURL, article, result, time.Now())
	if err := s.sink.SaveDocument(ctx, doc); err != nil {
		log.Error("Failed to archive page", "url", result.URL, "error", err)
	}
}

func newDocument(crawlID, rootURL string, article *models.ExtractedArticle, result models.PageResult, now time.Time) *models.Document {
	return &models.Document{
		URL:           result.URL,
		NormalizedURL: result.URL,
		RootURL:       rootURL,
		CrawlID:       crawlID,
		Title:         article.Title,
		Content:       result.Content,
		ContentHash:   urlqueue.ComputeContentHash(result.Content),
		ContentLength: len(result.Content),
		FirstScraped:  now.Unix(),
		LastScraped:   now.Unix(),
	}
}

func logSkip(log logger.Interface, phase, pageURL string, err error) {
	reason := models.ReasonOf(err)
	fields := []any{"phase", phase, "url", pageURL, "reason", reason.String(), "error", err}

	switch reason {
	case models.SkipNetworkFailure, models.SkipParseFailure:
		log.Warn("Failed to crawl page", fields...)
	case models.SkipUnsupportedContentType:
		log.Info("Skipped (not HTML content)", fields...)
	default:
		log.Debug("Skipped page", fields...)
	}
}

func quoteOrNone(contentType string) string {
	if contentType == "" {
		return "missing"
	}
	return `"` + contentType + `"`
}
