package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be positive")
	}
	if c.Pipeline.PollInterval <= 0 {
		return errors.New("pipeline.poll_interval must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if _, err := time.LoadLocation(c.Journal.Timezone); err != nil {
		return fmt.Errorf("journal.timezone %q is not a valid IANA zone: %w", c.Journal.Timezone, err)
	}
	if _, err := time.Parse("15:04", c.Journal.DayCutoff); err != nil {
		return fmt.Errorf("journal.day_cutoff must be HH:MM, got %q", c.Journal.DayCutoff)
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.OpenAI.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/quill/config.toml"
		}
		return fmt.Errorf("openai.api_key is required. Set OPENAI_API_KEY env var or edit %s", defaultPath)
	}
	if c.OpenAI.Temperature > 2 {
		return errors.New("openai.temperature must be at most 2")
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		return errors.New("openai.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotion() error {
	if c.Notion.APIKey == "" {
		return errors.New("notion.api_key is required. Set NOTION_API_KEY env var or add it to the config file")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("notion.database_id is required. Set NOTION_DATABASE_ID env var or add it to the config file")
	}
	if c.Notion.TimeoutSeconds <= 0 {
		return errors.New("notion.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	if topic := c.Notifications.NtfyTopic; topic != "" && !strings.HasPrefix(topic, "http") {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", topic)
	}
	return nil
}
