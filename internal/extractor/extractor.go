// Package extractor isolates the readable article text of a page.
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/go-shiori/go-readability"

	"site_crawler/internal/document"
	"site_crawler/internal/models"
)

// jsSpace is the whitespace class of JavaScript regular expressions, which
// also covers Unicode space separators, unlike RE2's \s.
const jsSpace = `[\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`

// Runs of two or more whitespace characters collapse to one space. A single
// newline or tab between words is kept as is.
var reWhitespace = regexp.MustCompile(jsSpace + `{2,}`)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// Collapse applies the whitespace normalization used on extracted text.
func Collapse(text string) string {
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimFunc(text, isSpace)
}

// Length counts UTF-16 code units, the unit the minimum length is expressed in.
func Length(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

type Extractor struct {
	MinLength int
}

func New(minLength int) *Extractor {
	if minLength < 0 {
		minLength = models.MinContentLength
	}
	return &Extractor{MinLength: minLength}
}

// Extract runs readability over doc. Text shorter than MinLength after
// normalization is rejected with reason SkipExtractionTooShort.
func (e *Extractor) Extract(doc *document.Document) (*models.ExtractedArticle, error) {
	pageURL := doc.URL.String()

	article, err := readability.FromDocument(doc.Root(), doc.URL)
	if err != nil {
		return nil, models.NewStageError(models.SkipParseFailure, pageURL, err)
	}

	text := Collapse(article.TextContent)
	if n := Length(text); n < e.MinLength {
		return nil, models.NewStageError(models.SkipExtractionTooShort, pageURL,
			fmt.Errorf("%d characters, need %d", n, e.MinLength))
	}

	title := article.Title
	if title == "" {
		title = doc.Title()
	}

	return &models.ExtractedArticle{
		Title:   title,
		Text:    text,
		Excerpt: article.Excerpt,
	}, nil
}
