package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8182 {
		t.Errorf("default port = %d, want 8182", cfg.Server.Port)
	}
	if cfg.Debate.MinWait != 900*time.Millisecond || cfg.Debate.MaxWait != 3*time.Second {
		t.Errorf("default debate window = [%s, %s]", cfg.Debate.MinWait, cfg.Debate.MaxWait)
	}
	if cfg.Debate.MaxTurns != 15 {
		t.Errorf("default max turns = %d, want 15", cfg.Debate.MaxTurns)
	}

	for _, key := range []string{"groq1", "groq2", "groq3", "mock"} {
		mc, ok := cfg.Models[key]
		if !ok {
			t.Errorf("default models missing %q", key)
			continue
		}
		if !mc.Enabled {
			t.Errorf("model %q disabled by default", key)
		}
	}

	if cfg.Models["groq2"].KeyEnvVar != "GROQ_API_KEY_2" {
		t.Errorf("groq2 key env var = %q", cfg.Models["groq2"].KeyEnvVar)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Server.Port != 8182 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadFromMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  port: 9000
models:
  groq1:
    kind: groq
    key_env_var: MY_KEY
    model: llama-3.3-70b-versatile
    enabled: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Models["groq1"].Model != "llama-3.3-70b-versatile" {
		t.Errorf("groq1 model = %q", cfg.Models["groq1"].Model)
	}

	// Keys absent from the file come from defaults
	if _, ok := cfg.Models["groq2"]; !ok {
		t.Error("groq2 not merged from defaults")
	}
	if _, ok := cfg.Models["mock"]; !ok {
		t.Error("mock not merged from defaults")
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("models: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.Port = 9999
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("reloaded port = %d, want 9999", loaded.Server.Port)
	}
}

func TestCreateRegistry(t *testing.T) {
	cfg := Default()
	for key, mc := range cfg.Models {
		mc.Enabled = key == "groq1" || key == "mock"
		cfg.Models[key] = mc
	}

	registry := cfg.CreateRegistry()
	keys := registry.Keys()
	if len(keys) != 2 {
		t.Errorf("registry has %d keys, want 2: %v", len(keys), keys)
	}
}
