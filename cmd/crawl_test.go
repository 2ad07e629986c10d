package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_crawler/internal/models"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	names := []string{}
	for _, c := range NewRootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "crawl")
}

func TestCrawlCommandRequiresURL(t *testing.T) {
	_, err := runRoot(t, "crawl")
	assert.Error(t, err)
}

func TestCrawlCommand(t *testing.T) {
	para := strings.Repeat("Readable sentence about a test site, with commas, clauses, and words. ", 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>T</title></head><body><article><p>" + para +
			"</p><p>" + para + "</p></article></body></html>"))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	out, err := runRoot(t, "crawl", "--config", cfgPath, "--budget", "1", server.URL)
	require.NoError(t, err)

	var results []models.PageResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, server.URL+"/", results[0].URL)
	assert.Contains(t, results[0].Content, "Readable sentence")
}

func TestCrawlCommandInvalidURL(t *testing.T) {
	_, err := runRoot(t, "crawl", "not a url")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidURL)
}

func TestCrawlCommandBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logic:\n  scope_mode: sideways\n"), 0o600))

	_, err := runRoot(t, "crawl", "--config", cfgPath, "https://example.com")
	assert.Error(t, err)
}
