package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leadscout/leadscout-backend/models"
)

const (
	extractConcurrency = 4
	extractRetries     = 2
	extractBackoff     = 2 * time.Second
)

var extractClient = &http.Client{Timeout: 90 * time.Second}

// extractPrompt targets lead-relevant fields on a Quora page.
const extractPrompt = "Extract all user information including username, bio, post type (question/answer), timestamp, upvotes, and any links from Quora posts. Focus on identifying potential leads who are asking questions or providing answers related to the topic."

// extractSchema is the fixed JSON schema sent with every extraction request:
// a page is a list of user interactions.
var extractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"interactions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"username":  map[string]any{"type": "string"},
					"bio":       map[string]any{"type": "string"},
					"post_type": map[string]any{"type": "string", "enum": []string{"question", "answer"}},
					"timestamp": map[string]any{"type": "string"},
					"upvotes":   map[string]any{"type": "integer", "default": 0},
					"links":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"username", "post_type"},
			},
		},
	},
	"required": []string{"interactions"},
}

type firecrawlExtractRequest struct {
	URLs   []string       `json:"urls"`
	Prompt string         `json:"prompt"`
	Schema map[string]any `json:"schema"`
}

type firecrawlExtractResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Data    struct {
		Interactions []models.InteractionRecord `json:"interactions"`
	} `json:"data"`
}

// ExtractInteractions pulls structured interactions from each URL through the
// extraction API. URLs are processed by a bounded worker pool; one URL's
// failure never discards another URL's results, and output order follows the
// input URL order regardless of completion order. A URL contributes only when
// extraction succeeds with a non-empty interaction list.
//
// When fallback is non-nil and the API fails for a URL, the page is scraped
// directly and the active LLM asked to extract the same schema.
func ExtractInteractions(urls []string, apiKey string, fallback *KeyPool) []models.SourcedInteractions {
	slots := make([]*models.SourcedInteractions, len(urls))

	g := new(errgroup.Group)
	g.SetLimit(extractConcurrency)

	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			interactions, err := extractOne(url, apiKey)
			if err != nil {
				log.Printf("[Extractor] %s: %v", url, err)
				// A clean empty result is final; only API failures get the
				// scrape fallback.
				if fallback != nil && fallback.Len() > 0 {
					interactions, err = ScrapeInteractions(url, fallback)
					if err != nil {
						log.Printf("[Extractor] scrape fallback for %s: %v", url, err)
					}
				}
			}
			if len(interactions) > 0 {
				slots[i] = &models.SourcedInteractions{WebsiteURL: url, Interactions: interactions}
			}
			return nil
		})
	}
	g.Wait()

	var out []models.SourcedInteractions
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// extractOne issues the structured-extraction request for a single URL, with
// a small bounded retry on transport errors and 5xx responses.
func extractOne(url, apiKey string) ([]models.InteractionRecord, error) {
	if cached, ok := GetCachedInteractions(url); ok {
		log.Printf("[Extractor] cache hit: %s (%d interactions)", url, len(cached))
		return cached, nil
	}

	var lastErr error
	for attempt := 0; attempt <= extractRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * extractBackoff)
		}

		interactions, retryable, err := extractOnce(url, apiKey)
		if err == nil {
			SetCachedInteractions(url, interactions)
			return interactions, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func extractOnce(url, apiKey string) (interactions []models.InteractionRecord, retryable bool, err error) {
	payload := firecrawlExtractRequest{
		URLs:   []string{url},
		Prompt: extractPrompt,
		Schema: extractSchema,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", firecrawlBaseURL+"/v1/extract", bytes.NewBuffer(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := extractClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("extract returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("extract returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	var data firecrawlExtractResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, err
	}
	if !data.Success || data.Status != "completed" {
		return nil, false, fmt.Errorf("extract not completed (success=%v status=%q)", data.Success, data.Status)
	}
	return data.Data.Interactions, false, nil
}
