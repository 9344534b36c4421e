package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/leadscout/leadscout-backend/models"
)

// ─── Composio spreadsheet integration ─────────────────────────────────────────
// The integration's response shape is not contractually fixed across
// versions, so URL recovery tries several strategies in order rather than
// trusting any single field name.

var composioBaseURL = "https://backend.composio.dev"

const (
	sheetAction    = "GOOGLESHEETS_SHEET_FROM_JSON"
	sheetURLPrefix = "https://docs.google.com/spreadsheets/d/"
)

// Execute paths tried in order; the integration has moved its invocation
// surface between API versions.
var composioExecutePaths = []string{
	"/api/v2/actions/%s/execute",
	"/api/v1/actions/%s/execute",
}

var sheetClient = &http.Client{Timeout: 45 * time.Second}

var (
	sheetURLPattern = regexp.MustCompile(`https://docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	// Tolerates escaped quotes — the token often sits inside a stringified
	// JSON payload.
	sheetIDPattern = regexp.MustCompile(`\\?"spreadsheet_?[iI]d\\?"\s*:\s*\\?"([a-zA-Z0-9_-]+)\\?"`)
)

// Field names checked, in priority order, when hunting for a sheet URL in a
// nested result.
var sheetURLFields = []string{
	"spreadsheetUrl", "spreadsheet_url", "sheetUrl", "sheet_url",
	"url", "link", "response_data",
}

var sheetIDFields = []string{"spreadsheetId", "spreadsheet_id"}

// PublishSheet pushes the rows through the spreadsheet integration and tries
// to recover the created sheet's URL from whatever shape the integration
// returns. Every failure inside this component collapses to "" — the caller
// cannot distinguish a transport failure from a missing capability, and falls
// back to CSV either way. The debug payload records the last attempt for
// manual inspection.
func PublishSheet(rows []models.FlatRow, apiKey, title string, debug bool) (string, *models.PublishDebug) {
	if len(rows) == 0 {
		log.Printf("[Composio] no rows to publish")
		return "", nil
	}
	if title == "" {
		title = "AI Leads"
	}

	// Field-name permutations the integration has accepted across versions.
	variants := []struct {
		name    string
		payload map[string]any
	}{
		{"title+data", map[string]any{"title": title, "data": rows}},
		{"title+json", map[string]any{"title": title, "json": rows}},
		{"title+rows", map[string]any{"title": title, "rows": rows}},
		{"data", map[string]any{"data": rows}},
	}

	var dbg *models.PublishDebug
	for _, v := range variants {
		result, raw, err := executeSheetAction(apiKey, v.payload)
		if err != nil {
			log.Printf("[Composio] variant %s: %v", v.name, err)
			continue
		}
		if result == nil && raw == "" {
			continue
		}

		if debug {
			dbg = &models.PublishDebug{
				PayloadVariant: v.name,
				ResultType:     fmt.Sprintf("%T", result),
				Preview:        truncate(raw, 500),
			}
		}

		// A non-empty result means the action executed; submitting further
		// variants would create duplicate sheets. Recovery failure on this
		// result is final.
		url := recoverSheetURL(result, raw)
		if url != "" {
			log.Printf("[Composio] sheet created via variant %s", v.name)
		} else {
			log.Printf("[Composio] variant %s executed but returned no parseable sheet URL", v.name)
		}
		return url, dbg
	}

	log.Printf("[Composio] no payload variant accepted")
	return "", dbg
}

// executeSheetAction posts one payload variant to the integration, trying
// each known execute path until one answers 2xx with a body. The decoded
// result may be a map, slice, or bare primitive; if the body isn't JSON at
// all, the raw string stands in as the result.
func executeSheetAction(apiKey string, payload map[string]any) (any, string, error) {
	body, err := json.Marshal(map[string]any{"input": payload})
	if err != nil {
		return nil, "", err
	}

	var lastErr error
	for _, path := range composioExecutePaths {
		url := composioBaseURL + fmt.Sprintf(path, sheetAction)
		req, err := http.NewRequest("POST", url, bytes.NewReader(body))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", apiKey)

		resp, err := sheetClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("execute %s returned status %d", path, resp.StatusCode)
			continue
		}
		if len(raw) == 0 {
			lastErr = fmt.Errorf("execute %s returned empty body", path)
			continue
		}

		var result any
		if err := json.Unmarshal(raw, &result); err != nil {
			// Not JSON — keep the raw text, the regex strategies can
			// still find a URL in it.
			return string(raw), string(raw), nil
		}
		return result, string(raw), nil
	}
	return nil, "", lastErr
}

// recoverSheetURL applies the URL-recovery strategies in order:
//  1. spreadsheet-identifier field at any nesting depth → construct the URL
//  2. known URL-bearing field names, recursively
//  3. stringify the whole result and regex for a canonical sheet URL
//  4. regex for a bare spreadsheet-identifier token embedded in text
func recoverSheetURL(result any, raw string) string {
	if id := findStringField(result, sheetIDFields); id != "" {
		return sheetURLPrefix + id
	}

	if v := findStringField(result, sheetURLFields); v != "" {
		if m := sheetURLPattern.FindString(v); m != "" {
			return m
		}
	}

	text := stringifyResult(result)
	if text == "" {
		text = raw
	}
	if m := sheetURLPattern.FindString(text); m != "" {
		return m
	}
	if m := sheetURLPattern.FindString(raw); m != "" {
		return m
	}

	if m := sheetIDPattern.FindStringSubmatch(text); len(m) == 2 {
		return sheetURLPrefix + m[1]
	}
	if m := sheetIDPattern.FindStringSubmatch(raw); len(m) == 2 {
		return sheetURLPrefix + m[1]
	}
	return ""
}

// findStringField walks nested maps and slices looking for a non-empty string
// value under any of the given keys. Direct hits on the current map win over
// deeper matches.
func findStringField(v any, keys []string) string {
	switch t := v.(type) {
	case map[string]any:
		for _, k := range keys {
			if val, ok := t[k]; ok {
				if s, ok := val.(string); ok && s != "" {
					return s
				}
			}
		}
		for _, val := range t {
			if s := findStringField(val, keys); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range t {
			if s := findStringField(item, keys); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringifyResult renders the result for the regex strategies: structured
// serialization first, plain formatting as a last resort.
func stringifyResult(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
