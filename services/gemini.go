package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ─── Gemini REST API ──────────────────────────────────────────────────────────
// Docs: https://ai.google.dev/api/rest/v1beta/models/generateContent

var geminiBaseURL = "https://generativelanguage.googleapis.com"

var llmClient = &http.Client{Timeout: 30 * time.Second}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AskGemini sends a system + user prompt to the Google Gemini REST API.
func AskGemini(apiKey, model, sysPrompt, userPrompt string) (string, int, error) {
	if apiKey == "" {
		return "", 0, fmt.Errorf("Gemini API key is empty")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}

	// Gemini doesn't have a separate system role in the basic REST API —
	// we prepend the system prompt as the first user turn.
	combined := sysPrompt + "\n\n" + userPrompt

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: combined}}},
		},
	}

	body, _ := json.Marshal(payload)
	url := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		geminiBaseURL, model, apiKey,
	)

	resp, err := llmClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("[Gemini] request error: %v", err)
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result geminiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("[Gemini] parse error: %v", err)
		return "", 0, err
	}
	if result.Error != nil {
		return "", 0, fmt.Errorf("Gemini API error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", result.UsageMetadata.TotalTokenCount, fmt.Errorf("Gemini returned no candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, result.UsageMetadata.TotalTokenCount, nil
}
