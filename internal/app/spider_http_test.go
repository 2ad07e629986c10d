package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_crawler/internal/fetcher"
	"site_crawler/internal/models"
)

func TestCrawlSiteOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage("Front page", "/b", "/data.json", "/missing", "https://elsewhere.test/")))
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage("Inner page", "/")))
	})
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := fetcher.New(fetcher.Options{Timeout: 2 * time.Second})
	results, err := NewSpider(f).CrawlSite(context.Background(), models.CrawlRequest{RootURL: server.URL, PageBudget: 5})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, server.URL+"/", results[0].URL)
	assert.Equal(t, server.URL+"/b", results[1].URL)
	assert.Contains(t, results[0].Content, "Front page")
	assert.Contains(t, results[1].Content, "Inner page")
}

func TestCrawlSiteUnreachableRoot(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	root := server.URL
	server.Close()

	f := fetcher.New(fetcher.Options{Timeout: time.Second})
	results, err := NewSpider(f).CrawlSite(context.Background(), models.CrawlRequest{RootURL: root})
	require.NoError(t, err)
	assert.Empty(t, results)
}
