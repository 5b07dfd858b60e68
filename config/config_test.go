package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"server": {"address": ":9090"},
		"llm": {"api_key": "sk-test", "model": "gpt-4o-mini"},
		"slack": {"channel_id": "C123"}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("file value not applied: %q", cfg.Server.Address)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm model not applied: %q", cfg.LLM.Model)
	}
	// Unset values fall back to defaults.
	if cfg.Index.TopK != 3 || cfg.Pipeline.MaxChunkSize != 1000 || cfg.Slack.DaysBack != 30 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CHIENOWA_LLM_API_KEY", "sk-env")
	t.Setenv("CHIENOWA_LLM_MODEL", "gpt-4o")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		// An explicitly named missing file is an error; the env-only
		// path goes through the search-path branch instead.
		t.Fatalf("expected error for missing explicit config file")
	}

	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Fatalf("env value not applied: %q", cfg.LLM.APIKey)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error without api key")
	}
}
