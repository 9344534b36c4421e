package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadscout/leadscout-backend/models"
)

var spaceRe = regexp.MustCompile(`\s+`)

const scrapeSystemPrompt = `You extract structured lead data from raw Quora page text.
Return ONLY a JSON array of objects with fields: username, bio, post_type ("question" or "answer"), timestamp, upvotes (integer), links (array of URL strings).
Return [] if no user posts are present. No explanations, no markdown fences.`

// ScrapeInteractions is the best-effort fallback used when the extraction API
// fails for a URL: fetch the page directly, strip boilerplate, and
// ask the active LLM to pull the interaction schema out of the raw text.
func ScrapeInteractions(pageURL string, pool *KeyPool) ([]models.InteractionRecord, error) {
	log.Printf("[Scraper] fallback extraction for %s", pageURL)

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	// Mimic a real browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed fetching page body: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned HTTP status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	// Remove scripts/styles and chrome
	doc.Find("script, style, noscript, nav, footer, header").Remove()
	text := strings.TrimSpace(doc.Text())
	text = spaceRe.ReplaceAllString(text, " ")

	if len(text) > 8000 {
		text = text[:8000] // Stay within token limits
	}
	if text == "" {
		return nil, fmt.Errorf("page yielded no text")
	}

	key, err := pool.Next()
	if err != nil {
		return nil, err
	}

	result, tokens, err := AskLLM(key, scrapeSystemPrompt, "Page URL: "+pageURL+"\n\nPage text:\n"+text)
	if err != nil {
		return nil, err
	}
	LogQueryTokens("scrape-fallback", pageURL, tokens)

	result = strings.TrimSpace(result)
	result = strings.TrimPrefix(result, "```json")
	result = strings.TrimPrefix(result, "```")
	result = strings.TrimSuffix(result, "```")
	result = strings.TrimSpace(result)

	var interactions []models.InteractionRecord
	if err := json.Unmarshal([]byte(result), &interactions); err != nil {
		return nil, fmt.Errorf("LLM returned unparseable interactions: %v", err)
	}
	return interactions, nil
}
