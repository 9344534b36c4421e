package services

import (
	"fmt"
	"log"
	"strings"
)

// condenseInstructions is the fixed few-shot block prepended to every
// condense call. The literal user query is appended as the final input.
const condenseInstructions = `You are an expert at transforming detailed user queries into concise company descriptions.
Your task is to extract the core business/product focus in 3-4 words.

Examples:
Input: "Generate leads looking for AI-powered customer support chatbots for e-commerce stores."
Output: "AI customer support chatbots for e commerce"

Input: "Find people interested in voice cloning technology for creating audiobooks and podcasts"
Output: "voice cloning technology"

Input: "Looking for users who need automated video editing software with AI capabilities"
Output: "AI video editing software"

Input: "Need to find businesses interested in implementing machine learning solutions for fraud detection"
Output: "ML fraud detection"

Always focus on the core product/service and keep it concise but clear.`

// maxCondensedWords caps the condensed phrase length regardless of what the
// model returns.
const maxCondensedWords = 8

// CondenseQuery compresses a free-text lead description into a short search
// phrase using the active LLM provider, rotating across the pool's keys.
// LLM errors surface verbatim to the caller; there is no retry here.
func CondenseQuery(pool *KeyPool, userQuery string) (string, int, error) {
	key, err := pool.Next()
	if err != nil {
		return "", 0, err
	}

	prompt := fmt.Sprintf("Input: %q\nOutput:", userQuery)
	text, tokens, err := AskLLM(key, condenseInstructions, prompt)
	if err != nil {
		return "", tokens, err
	}

	text = strings.TrimSpace(text)
	if words := strings.Fields(text); len(words) > maxCondensedWords {
		text = strings.Join(words[:maxCondensedWords], " ")
	}
	log.Printf("[Condenser] %q → %q (%d tokens)", userQuery, text, tokens)
	return text, tokens, nil
}
