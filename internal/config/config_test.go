package config

import (
	"os"
	"path/filepath"
	"testing"

	"grantmaster/internal/store"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != store.DefaultDBPath {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantmaster.yaml")
	doc := `database:
  path: /tmp/custom.db
portal:
  url: https://portal.example.com
  username: grants@example.org
llm:
  model: gpt-4o-mini
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Portal.URL != "https://portal.example.com" || cfg.Portal.Username != "grants@example.org" {
		t.Errorf("portal = %+v", cfg.Portal)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadSecretsFromEnvironment(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvPortalPassword, "hunter2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Portal.Password != "hunter2" {
		t.Errorf("password = %q", cfg.Portal.Password)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("database: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
