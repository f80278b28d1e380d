package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads an audio file and returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c == nil {
		return "", errors.New("openai transcribe: nil client")
	}
	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return "", errors.New("openai transcribe: empty audio path")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("openai transcribe: api key required")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("openai transcribe: open audio: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", c.cfg.TranscriptionModel); err != nil {
		return "", fmt.Errorf("openai transcribe: write model field: %w", err)
	}
	field, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("openai transcribe: create file field: %w", err)
	}
	if _, err := io.Copy(field, file); err != nil {
		return "", fmt.Errorf("openai transcribe: copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("openai transcribe: close multipart writer: %w", err)
	}

	endpoint := c.cfg.BaseURL + transcribePath
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("openai transcribe: build request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("openai transcribe: http request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai transcribe: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("openai transcribe: http %d: %s", resp.StatusCode, summarizePayloadSnippet(string(payload)))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("openai transcribe: decode response: %w", err)
	}
	return parsed.Text, nil
}
