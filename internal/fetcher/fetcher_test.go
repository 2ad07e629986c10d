package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_crawler/internal/models"
)

func TestFetchReturnsBodyAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>hi</body></html>")
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "test-agent", Timeout: time.Second})
	resp, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/page", resp.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	assert.Equal(t, "<html><body>hi</body></html>", string(resp.Body))
}

func TestFetchErrorStatusIsNotAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><body>missing</body></html>")
	}))
	defer srv.Close()

	f := New(Options{Timeout: time.Second})
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Contains(t, string(resp.Body), "missing")
}

func TestFetchSameURLTwice(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := New(Options{Timeout: time.Second})
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := New(Options{Timeout: 100 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
	assert.Equal(t, models.SkipNetworkFailure, models.ReasonOf(err))
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f := New(Options{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), addr)
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Options{})
	_, err := f.Fetch(ctx, "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchRedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	f := New(Options{Timeout: time.Second, MaxRedirects: 2})
	_, err := f.Fetch(context.Background(), srv.URL+"/r")
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
}

func TestFetchSendsNoCookiesBack(t *testing.T) {
	var cookies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		cookies = append(cookies, r.Header.Get("Cookie"))
		mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "crawl-one", Path: "/"})
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	f := New(Options{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", ""}, cookies)
}

func TestFetchDecodesMetaCharset(t *testing.T) {
	// A Russian greeting in windows-1251.
	body := []byte("<html><head><meta charset=\"windows-1251\"></head><body><p>\xcf\xf0\xe8\xe2\xe5\xf2</p></body></html>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	resp, err := New(Options{Timeout: time.Second}).Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.True(t, utf8.Valid(resp.Body))
	assert.Contains(t, string(resp.Body), "\u041f\u0440\u0438\u0432\u0435\u0442")
}

func TestDecodeBodyKeepsUTF8AndNonHTML(t *testing.T) {
	utf := []byte("<p>caf\u00e9</p>")
	assert.Equal(t, utf, decodeBody(utf, "text/html"))

	raw := []byte{0xff, 0xfe, 0x00}
	assert.Equal(t, raw, decodeBody(raw, "image/png"))
}

func TestFetchFlagsTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>"+strings.Repeat("x", 4096)+"</body></html>")
	}))
	defer srv.Close()

	resp, err := New(Options{Timeout: time.Second, MaxBodyBytes: 1024}).Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.True(t, resp.Truncated)
	assert.Len(t, resp.Body, 1024)

	resp, err = New(Options{Timeout: time.Second}).Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.False(t, resp.Truncated)
}
