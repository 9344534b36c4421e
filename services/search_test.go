package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindLinksReturnsURLsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))

		var req firecrawlSearchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "quora")
		assert.Contains(t, req.Query, "AI video editing software")
		assert.Equal(t, "en", req.Lang)
		assert.Equal(t, 60000, req.Timeout)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"data":[{"url":"https://quora.com/a"},{"url":"https://quora.com/b"},{"url":"https://quora.com/c"},{"url":"https://quora.com/d"}]}`)
	}))
	defer server.Close()

	prev := firecrawlBaseURL
	firecrawlBaseURL = server.URL
	defer func() { firecrawlBaseURL = prev }()

	urls, err := FindLinks("AI video editing software", "fc-key", 3)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://quora.com/a", "https://quora.com/b", "https://quora.com/c"}, urls)
}

func TestFindLinksEmptyOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	prev := firecrawlBaseURL
	firecrawlBaseURL = server.URL
	defer func() { firecrawlBaseURL = prev }()

	urls, err := FindLinks("topic", "fc-key", 3)
	assert.Error(t, err)
	assert.Empty(t, urls)
}

func TestFindLinksEmptyOnSuccessFalse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":false,"data":[]}`)
	}))
	defer server.Close()

	prev := firecrawlBaseURL
	firecrawlBaseURL = server.URL
	defer func() { firecrawlBaseURL = prev }()

	urls, err := FindLinks("topic", "fc-key", 3)
	assert.Error(t, err)
	assert.Empty(t, urls)
}
