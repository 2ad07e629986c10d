// Package document parses fetched HTML into a tree shared by link discovery
// and content extraction.
package document

import (
	"bytes"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"site_crawler/internal/models"
)

var errEmptyDocument = errors.New("document has no root node")

// IsHTML reports whether a Content-Type header value announces HTML.
// A missing header is not HTML.
func IsHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html")
}

type Document struct {
	URL *url.URL
	doc *goquery.Document
}

// Parse builds a document from body. pageURL is kept for resolving relative
// links and for readability.
func Parse(body []byte, pageURL string) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, models.NewStageError(models.SkipInvalidURL, pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, models.NewStageError(models.SkipParseFailure, pageURL, err)
	}
	if len(doc.Nodes) == 0 || doc.Nodes[0] == nil {
		return nil, models.NewStageError(models.SkipParseFailure, pageURL, errEmptyDocument)
	}
	doc.Url = u

	return &Document{URL: u, doc: doc}, nil
}

// Links returns the href of every anchor in document order. Anchors without
// an href, or with an empty one, are left out. Values are not resolved.
func (d *Document) Links() []string {
	var links []string
	d.doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, href)
	})
	return links
}

func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Root is the document node, for consumers working on x/net/html trees.
func (d *Document) Root() *html.Node {
	return d.doc.Nodes[0]
}
