// Package fetcher downloads pages for the crawler.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly"
	"golang.org/x/net/html/charset"

	"site_crawler/internal/logger"
	"site_crawler/internal/models"
)

const (
	DefaultTimeout      = 8 * time.Second
	DefaultMaxRedirects = 15

	responseKey = "response"
)

var errNoResponse = errors.New("collector produced no response")

// Response is what a fetch returns for any HTTP status.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	// Truncated is set when the body was cut at MaxBodyBytes.
	Truncated   bool
}

type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Response, error)
}

type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int
	MaxRedirects int
	Logger       logger.Interface
}

// CollyFetcher runs every request through one synchronous colly collector.
// Results are handed back through the per-request colly context, so the
// collector can be shared by concurrent crawls.
type CollyFetcher struct {
	collector *colly.Collector
}

func New(opts Options) *CollyFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOp()
	}
	log := opts.Logger

	collectorOpts := []func(*colly.Collector){
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	}
	if opts.UserAgent != "" {
		collectorOpts = append(collectorOpts, colly.UserAgent(opts.UserAgent))
	}
	if opts.MaxBodyBytes > 0 {
		collectorOpts = append(collectorOpts, colly.MaxBodySize(opts.MaxBodyBytes))
	}

	c := colly.NewCollector(collectorOpts...)
	c.SetRequestTimeout(opts.Timeout)
	// Crawls share the collector; none may see another's cookies.
	c.DisableCookies()

	maxHops := opts.MaxRedirects
	c.RedirectHandler = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return fmt.Errorf("stopped after %d redirects", maxHops)
		}
		return nil
	}

	maxBody := opts.MaxBodyBytes
	c.OnResponse(func(r *colly.Response) {
		resp := &Response{StatusCode: r.StatusCode}
		if r.Headers != nil {
			resp.ContentType = r.Headers.Get("Content-Type")
		}
		if maxBody > 0 && len(r.Body) >= maxBody {
			resp.Truncated = true
			log.Debug("Response body truncated", "url", r.Request.URL.String(), "max_body_bytes", maxBody)
		}
		resp.Body = decodeBody(r.Body, resp.ContentType)
		r.Ctx.Put(responseKey, resp)
	})

	return &CollyFetcher{collector: c}
}

// Fetch issues a GET for pageURL. Transport failures and timeouts come back
// as a models.StageError with reason SkipNetworkFailure; an HTTP error status
// is not a failure.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, pageURL, nil, reqCtx, nil); err != nil {
		return nil, models.NewStageError(models.SkipNetworkFailure, pageURL, err)
	}

	resp, ok := reqCtx.GetAny(responseKey).(*Response)
	if !ok {
		return nil, models.NewStageError(models.SkipNetworkFailure, pageURL, errNoResponse)
	}
	resp.URL = pageURL
	return resp, nil
}

// decodeBody converts an HTML body to UTF-8 when colly left it alone, which
// it does when the Content-Type header names no charset. The <meta> charset
// of the page decides the encoding then.
func decodeBody(body []byte, contentType string) []byte {
	if utf8.Valid(body) || !strings.Contains(contentType, "text/html") {
		return body
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}
