package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PolishedResult is the structured outcome of a polish call.
type PolishedResult struct {
	PolishedText string `json:"polished_text"`
	Title        string `json:"title"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string             `json:"model"`
	Messages       []chatMessage      `json:"messages"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat chatResponseFormat `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// PolishTranscript rewrites a raw transcript into clean journal prose and a
// short title. The model is asked for a JSON object; a missing title falls
// back to TitleFallback, while a missing polished text is an error.
func (c *Client) PolishTranscript(ctx context.Context, transcript string) (PolishedResult, error) {
	if c == nil {
		return PolishedResult{}, errors.New("openai polish: nil client")
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return PolishedResult{}, errors.New("openai polish: empty transcript")
	}
	if c.cfg.APIKey == "" {
		return PolishedResult{}, errors.New("openai polish: api key required")
	}

	reqBody := chatCompletionRequest{
		Model: c.cfg.PolishModel,
		Messages: []chatMessage{
			{Role: "system", Content: PolishPrompt},
			{Role: "user", Content: transcript},
		},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: chatResponseFormat{Type: jsonResponseType},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return PolishedResult{}, fmt.Errorf("openai polish: encode request: %w", err)
	}

	endpoint := c.cfg.BaseURL + chatCompletionsPath
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return PolishedResult{}, fmt.Errorf("openai polish: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return PolishedResult{}, fmt.Errorf("openai polish: http request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return PolishedResult{}, fmt.Errorf("openai polish: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return PolishedResult{}, fmt.Errorf("openai polish: http %d: %s", resp.StatusCode, summarizePayloadSnippet(string(payload)))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return PolishedResult{}, fmt.Errorf("openai polish: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return PolishedResult{}, errors.New("openai polish: response contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	var result PolishedResult
	if err := decodeModelJSON(content, &result); err != nil {
		return PolishedResult{}, fmt.Errorf("openai polish: parse model output: %w", err)
	}

	result.PolishedText = strings.TrimSpace(result.PolishedText)
	result.Title = strings.TrimSpace(result.Title)
	if result.PolishedText == "" {
		return PolishedResult{}, errors.New("openai polish: model returned empty polished_text")
	}
	if result.Title == "" {
		result.Title = TitleFallback
	}
	return result, nil
}
