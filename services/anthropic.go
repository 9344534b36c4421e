package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// ─── Anthropic Claude REST API ────────────────────────────────────────────────
// Docs: https://docs.anthropic.com/en/api/messages

var anthropicBaseURL = "https://api.anthropic.com"

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AskClaude sends a system + user prompt to the Anthropic Messages API.
func AskClaude(apiKey, model, sysPrompt, userPrompt string) (string, int, error) {
	if apiKey == "" {
		return "", 0, fmt.Errorf("Anthropic API key is empty")
	}
	if model == "" {
		model = "claude-3-haiku-20240307"
	}

	payload := claudeRequest{
		Model:     model,
		MaxTokens: 1024,
		System:    sysPrompt,
		Messages:  []claudeMessage{{Role: "user", Content: userPrompt}},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", anthropicBaseURL+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := llmClient.Do(req)
	if err != nil {
		log.Printf("[Claude] request error: %v", err)
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result claudeResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("[Claude] parse error: %v — body: %s", err, string(raw))
		return "", 0, err
	}
	if result.Error != nil {
		return "", 0, fmt.Errorf("Claude API error [%s]: %s", result.Error.Type, result.Error.Message)
	}

	tokens := result.Usage.InputTokens + result.Usage.OutputTokens
	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, tokens, nil
		}
	}
	return "", tokens, fmt.Errorf("Claude returned no text blocks")
}
