package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"quill/internal/config"
)

func TestLoadDefaultUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-openai")
	t.Setenv("NOTION_API_KEY", "test-notion")
	t.Setenv("NOTION_DATABASE_ID", "test-db")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantInbox := filepath.Join(tempHome, ".local", "share", "quill", "inbox")
	if cfg.Paths.InboxDir != wantInbox {
		t.Fatalf("unexpected inbox dir: got %q want %q", cfg.Paths.InboxDir, wantInbox)
	}
	if cfg.OpenAI.APIKey != "test-openai" {
		t.Fatalf("expected OpenAI key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Notion.DatabaseID != "test-db" {
		t.Fatalf("expected Notion database from env, got %q", cfg.Notion.DatabaseID)
	}
	if cfg.OpenAI.TranscriptionModel != "whisper-1" {
		t.Fatalf("unexpected transcription model: %q", cfg.OpenAI.TranscriptionModel)
	}
	if cfg.Journal.Timezone != "Europe/London" {
		t.Fatalf("unexpected timezone default: %q", cfg.Journal.Timezone)
	}
	if cfg.Journal.DayCutoff != "04:00" {
		t.Fatalf("unexpected cutoff default: %q", cfg.Journal.DayCutoff)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Fatalf("unexpected worker default: %d", cfg.Pipeline.Workers)
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected notifications disabled by default, got %q", cfg.Notifications.NtfyTopic)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.InboxDir, cfg.Paths.ArchiveDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}

	if got := cfg.CatalogPath(); filepath.Dir(got) != cfg.Paths.DataDir {
		t.Fatalf("catalog path %q not under data dir %q", got, cfg.Paths.DataDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "quill.toml")

	type payload struct {
		OpenAI struct {
			APIKey      string `toml:"api_key"`
			PolishModel string `toml:"polish_model"`
		} `toml:"openai"`
		Notion struct {
			APIKey     string `toml:"api_key"`
			DatabaseID string `toml:"database_id"`
		} `toml:"notion"`
		Journal struct {
			Timezone  string `toml:"timezone"`
			DayCutoff string `toml:"day_cutoff"`
		} `toml:"journal"`
		Pipeline struct {
			Workers int `toml:"workers"`
		} `toml:"pipeline"`
	}
	custom := payload{}
	custom.OpenAI.APIKey = "file-openai"
	custom.OpenAI.PolishModel = "gpt-4.1-mini"
	custom.Notion.APIKey = "file-notion"
	custom.Notion.DatabaseID = "file-db"
	custom.Journal.Timezone = "America/New_York"
	custom.Journal.DayCutoff = "03:30"
	custom.Pipeline.Workers = 2
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.OpenAI.PolishModel != "gpt-4.1-mini" {
		t.Fatalf("expected polish model override, got %q", cfg.OpenAI.PolishModel)
	}
	if cfg.Journal.Timezone != "America/New_York" {
		t.Fatalf("expected timezone override, got %q", cfg.Journal.Timezone)
	}
	if cfg.Journal.DayCutoff != "03:30" {
		t.Fatalf("expected cutoff override, got %q", cfg.Journal.DayCutoff)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Pipeline.Workers)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "quill.toml")

	type payload struct {
		OpenAI struct {
			APIKey string `toml:"api_key"`
		} `toml:"openai"`
		Notion struct {
			APIKey     string `toml:"api_key"`
			DatabaseID string `toml:"database_id"`
		} `toml:"notion"`
	}
	custom := payload{}
	custom.OpenAI.APIKey = "file-openai"
	custom.Notion.APIKey = "file-notion"
	custom.Notion.DatabaseID = "file-db"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("NOTION_API_KEY", "env-notion")
	t.Setenv("NOTION_DATABASE_ID", "env-db")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.OpenAI.APIKey != "env-openai" {
		t.Errorf("expected OpenAI key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Notion.APIKey != "env-notion" {
		t.Errorf("expected Notion key from env, got %q", cfg.Notion.APIKey)
	}
	if cfg.Notion.DatabaseID != "env-db" {
		t.Errorf("expected Notion database from env, got %q", cfg.Notion.DatabaseID)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "whisper-1") {
		t.Fatalf("sample config missing transcription model: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Journal.DayCutoff != "04:00" {
		t.Fatalf("sample cutoff = %q, want 04:00", cfg.Journal.DayCutoff)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.OpenAI.APIKey = "key"
		cfg.Notion.APIKey = "key"
		cfg.Notion.DatabaseID = "db"
		return cfg
	}

	cfg := valid()
	cfg.Pipeline.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive workers")
	}

	cfg = valid()
	cfg.Pipeline.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive poll interval")
	}

	cfg = valid()
	cfg.Journal.Timezone = "Nowhere/Imaginary"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid timezone")
	}

	cfg = valid()
	cfg.Journal.DayCutoff = "4am"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed cutoff")
	}

	cfg = valid()
	cfg.OpenAI.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing OpenAI key")
	}

	cfg = valid()
	cfg.Notion.DatabaseID = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing Notion database")
	}

	cfg = valid()
	cfg.Notifications.NtfyTopic = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bare ntfy topic")
	}
}
