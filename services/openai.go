package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

var openaiBaseURL = "https://api.openai.com"

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AskOpenAI calls the OpenAI chat completions API with an explicit key and model.
func AskOpenAI(apiKey, model, systemPrompt, userPrompt string) (string, int, error) {
	if apiKey == "" {
		return "", 0, fmt.Errorf("OpenAI API key is empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	payload := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: strings.TrimSpace(userPrompt)},
		},
		Temperature: 0.1,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", openaiBaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := llmClient.Do(req)
	if err != nil {
		log.Printf("[OpenAI] request error: %v", err)
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var data openAIResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", 0, err
	}
	if data.Error != nil {
		return "", 0, fmt.Errorf("OpenAI API error: %s", data.Error.Message)
	}
	if len(data.Choices) == 0 {
		return "", data.Usage.TotalTokens, fmt.Errorf("OpenAI returned no choices")
	}
	return strings.TrimSpace(data.Choices[0].Message.Content), data.Usage.TotalTokens, nil
}
