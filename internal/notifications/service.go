package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quill/internal/config"
)

const userAgent = "Quill-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyEntrySaved(ctx context.Context, userID, title, url string) error
	NotifyEntryFailed(ctx context.Context, userID, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyEntrySaved(ctx context.Context, userID, title, url string) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("✅ Saved: %s", title)
	if user := DisplayName(userID); user != "" {
		message = fmt.Sprintf("✅ Saved for %s: %s", user, title)
	}
	if url = strings.TrimSpace(url); url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	data := payload{
		title:    "Quill - Entry Saved",
		message:  message,
		tags:     []string{"quill", "journal", "saved"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEntryFailed(ctx context.Context, userID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Something went wrong while processing your entry."
	}
	body := fmt.Sprintf("❌ %s", message)
	if user := DisplayName(userID); user != "" {
		body = fmt.Sprintf("%s\nEntry from %s", body, user)
	}
	data := payload{
		title:    "Quill - Entry Failed",
		message:  body,
		tags:     []string{"quill", "journal", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Quill - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"quill", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyEntrySaved(context.Context, string, string, string) error { return nil }
func (noopService) NotifyEntryFailed(context.Context, string, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
