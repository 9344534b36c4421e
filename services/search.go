package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var firecrawlBaseURL = "https://api.firecrawl.dev"

// Search requests carry their own 60s budget; the HTTP client matches it so a
// hung upstream can't block the pipeline longer than the advertised timeout.
const searchTimeoutMs = 60000

var searchClient = &http.Client{Timeout: 60 * time.Second}

type firecrawlSearchRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
	Lang     string `json:"lang"`
	Location string `json:"location"`
	Timeout  int    `json:"timeout"`
}

type firecrawlSearchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// FindLinks searches for Quora pages discussing the given topic. On upstream
// failure it returns an empty slice together with the error, so the caller
// can tell "confirmed empty" apart from "search was down"; the pipeline
// treats both as nothing found but logs the distinction.
func FindLinks(topic, apiKey string, limit int) ([]string, error) {
	query := fmt.Sprintf("quora websites where people are looking for %s services", topic)
	payload := firecrawlSearchRequest{
		Query:    query,
		Limit:    limit,
		Lang:     "en",
		Location: "United States",
		Timeout:  searchTimeoutMs,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", firecrawlBaseURL+"/v1/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := searchClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data firecrawlSearchResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if !data.Success {
		return nil, fmt.Errorf("search reported success=false")
	}

	urls := make([]string, 0, len(data.Data))
	for _, r := range data.Data {
		if r.URL == "" {
			continue
		}
		urls = append(urls, r.URL)
		if len(urls) == limit {
			break
		}
	}
	return urls, nil
}
