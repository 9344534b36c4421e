package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeExtractAPI answers /v1/extract per-URL according to the replies map:
// a JSON body string, or "" for a 404.
func fakeExtractAPI(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/extract", r.URL.Path)

		var req firecrawlExtractRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.URLs, 1)
		assert.NotEmpty(t, req.Prompt)
		assert.NotNil(t, req.Schema)

		body, ok := replies[req.URLs[0]]
		if !ok || body == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestExtractInteractionsIsolatesFailuresAndKeepsOrder(t *testing.T) {
	ClearExtractionCache()

	const (
		good1 = "https://quora.com/iso-1"
		bad   = "https://quora.com/iso-2"
		good2 = "https://quora.com/iso-3"
	)

	server := fakeExtractAPI(t, map[string]string{
		good1: `{"success":true,"status":"completed","data":{"interactions":[{"username":"alice","post_type":"question","upvotes":2}]}}`,
		bad:   "", // 404 — must not suppress the other URLs
		good2: `{"success":true,"status":"completed","data":{"interactions":[{"username":"bob","post_type":"answer"}]}}`,
	})
	defer server.Close()

	prev := firecrawlBaseURL
	firecrawlBaseURL = server.URL
	defer func() { firecrawlBaseURL = prev }()

	out := ExtractInteractions([]string{good1, bad, good2}, "fc-key", nil)

	assert.Len(t, out, 2)
	assert.Equal(t, good1, out[0].WebsiteURL)
	assert.Equal(t, good2, out[1].WebsiteURL)
	assert.Equal(t, "alice", out[0].Interactions[0].Username)
	assert.Equal(t, "bob", out[1].Interactions[0].Username)
}

func TestExtractInteractionsSkipsIncompleteAndEmpty(t *testing.T) {
	ClearExtractionCache()

	const (
		pending = "https://quora.com/skip-1"
		empty   = "https://quora.com/skip-2"
	)

	server := fakeExtractAPI(t, map[string]string{
		pending: `{"success":true,"status":"processing","data":{"interactions":[{"username":"x","post_type":"question"}]}}`,
		empty:   `{"success":true,"status":"completed","data":{"interactions":[]}}`,
	})
	defer server.Close()

	prev := firecrawlBaseURL
	firecrawlBaseURL = server.URL
	defer func() { firecrawlBaseURL = prev }()

	out := ExtractInteractions([]string{pending, empty}, "fc-key", nil)
	assert.Empty(t, out)
}

func TestExtractOneUsesCache(t *testing.T) {
	ClearExtractionCache()

	const url = "https://quora.com/cached-1"
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"status":"completed","data":{"interactions":[{"username":"carol","post_type":"answer"}]}}`)
	}))
	defer server.Close()

	prev := firecrawlBaseURL
	firecrawlBaseURL = server.URL
	defer func() { firecrawlBaseURL = prev }()

	first, err := extractOne(url, "fc-key")
	assert.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := extractOne(url, "fc-key")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}
