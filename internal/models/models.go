package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	DefaultPageBudget = 10
	MinContentLength  = 200
)

// CrawlRequest is the input of one crawl. It is not modified once the crawl starts.
// ID tags log lines and archived documents; one is generated when empty.
type CrawlRequest struct {
	ID         string
	RootURL    string
	PageBudget int
}

// Budget returns the page budget, falling back to DefaultPageBudget when unset.
func (r CrawlRequest) Budget() int {
	if r.PageBudget < 1 {
		return DefaultPageBudget
	}
	return r.PageBudget
}

// ExtractedArticle is the readable part of a page.
type ExtractedArticle struct {
	Title   string
	Text    string
	Excerpt string
}

type PageResult struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Document is the archived form of a PageResult.
type Document struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	URL           string             `bson:"url" json:"url"`
	NormalizedURL string             `bson:"normalized_url" json:"normalized_url"`
	RootURL       string             `bson:"root_url" json:"root_url"`
	CrawlID       string             `bson:"crawl_id" json:"crawl_id"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	ContentHash   string             `bson:"content_hash" json:"content_hash"`
	ContentLength int                `bson:"content_length" json:"content_length"`
	FirstScraped  int64              `bson:"first_scraped" json:"first_scraped"`
	LastScraped   int64              `bson:"last_scraped" json:"last_scraped"`
	ScrapedCount  int                `bson:"scraped_count" json:"scraped_count"`
}
