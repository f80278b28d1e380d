package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Entry is the payload for creating a journal page. FirstChunk and
// FirstRawChunk must already respect MaxRichTextChars.
type Entry struct {
	Title         string
	Date          string
	FirstChunk    string
	FirstRawChunk string
}

// Record identifies a created page.
type Record struct {
	ID  string
	URL string
}

type createPageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type property struct {
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Date     *dateValue `json:"date,omitempty"`
}

type dateValue struct {
	Start string `json:"start"`
}

type createPageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateEntry creates the primary journal record for one entry.
func (c *Client) CreateEntry(ctx context.Context, entry Entry) (Record, error) {
	var empty Record
	if c.cfg.APIKey == "" {
		return empty, errors.New("notion create: api key required")
	}
	if c.cfg.DatabaseID == "" {
		return empty, errors.New("notion create: database id required")
	}
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return empty, errors.New("notion create: title required")
	}
	if strings.TrimSpace(entry.Date) == "" {
		return empty, errors.New("notion create: date required")
	}

	properties := map[string]property{
		"Title": {Title: []RichText{textValue(title)}},
		"Date":  {Date: &dateValue{Start: entry.Date}},
	}
	if entry.FirstChunk != "" {
		properties["Structured"] = property{RichText: []RichText{textValue(entry.FirstChunk)}}
	}
	if entry.FirstRawChunk != "" {
		properties["Raw"] = property{RichText: []RichText{textValue(entry.FirstRawChunk)}}
	}

	requestBody := createPageRequest{
		Parent:     pageParent{DatabaseID: c.cfg.DatabaseID},
		Properties: properties,
	}
	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return empty, fmt.Errorf("notion create: encode request: %w", err)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/pages")
	if err != nil {
		return empty, fmt.Errorf("notion create: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("notion create: request: %w", err)
	}
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("notion create: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("notion create: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("notion create: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed createPageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return empty, fmt.Errorf("notion create: decode response: %w", err)
	}
	if parsed.ID == "" {
		return empty, errors.New("notion create: response missing page id")
	}
	return Record{ID: parsed.ID, URL: parsed.URL}, nil
}
