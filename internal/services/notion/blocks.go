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

// RawContinuationHeading labels the section holding raw transcript chunks
// that did not fit in the page's Raw property.
const RawContinuationHeading = "Raw Transcript (continued)"

// Block is one child block appended to a page.
type Block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *blockBody `json:"paragraph,omitempty"`
	Heading   *blockBody `json:"heading_2,omitempty"`
}

type blockBody struct {
	RichText []RichText `json:"rich_text"`
}

// RichText is Notion's smallest text unit.
type RichText struct {
	Type string      `json:"type"`
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

func textValue(content string) RichText {
	return RichText{Type: "text", Text: textContent{Content: content}}
}

// ParagraphBlock builds a paragraph child block.
func ParagraphBlock(text string) Block {
	return Block{
		Object:    "block",
		Type:      "paragraph",
		Paragraph: &blockBody{RichText: []RichText{textValue(text)}},
	}
}

// HeadingBlock builds a heading child block.
func HeadingBlock(text string) Block {
	return Block{
		Object:  "block",
		Type:    "heading_2",
		Heading: &blockBody{RichText: []RichText{textValue(text)}},
	}
}

type appendBlocksRequest struct {
	Children []Block `json:"children"`
}

// AppendBlocks appends one batch of child blocks to a page. The caller is
// responsible for batching; a batch larger than AppendBatchSize is rejected.
func (c *Client) AppendBlocks(ctx context.Context, recordID string, blocks []Block) error {
	if c.cfg.APIKey == "" {
		return errors.New("notion append: api key required")
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return errors.New("notion append: record id required")
	}
	if len(blocks) == 0 {
		return errors.New("notion append: empty batch")
	}
	if len(blocks) > AppendBatchSize {
		return fmt.Errorf("notion append: batch of %d exceeds limit %d", len(blocks), AppendBatchSize)
	}

	encoded, err := json.Marshal(appendBlocksRequest{Children: blocks})
	if err != nil {
		return fmt.Errorf("notion append: encode request: %w", err)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/blocks", recordID, "children")
	if err != nil {
		return fmt.Errorf("notion append: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("notion append: request: %w", err)
	}
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion append: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("notion append: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notion append: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
