package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFilesExist(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LSPEnabled {
		t.Errorf("expected LSPEnabled to default to false")
	}
	if _, ok := cfg.LanguageServers["go"]; !ok {
		t.Errorf("expected default go entry")
	}
}

func TestLoadLocalOverridesGlobalDefault(t *testing.T) {
	dir := t.TempDir()
	local := localSettingsPath(dir)
	if err := os.MkdirAll(filepath.Dir(local), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, _ := json.Marshal(&Settings{
		LSPEnabled: true,
		LanguageServers: map[string]LanguageServerConfig{
			"go": {Command: "custom-gopls", Enabled: true},
		},
	})
	if err := os.WriteFile(local, data, 0o600); err != nil {
		t.Fatalf("write local settings: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.LSPEnabled {
		t.Errorf("expected local settings to enable LSP")
	}
	goCfg, ok := cfg.LanguageServers["go"]
	if !ok || goCfg.Command != "custom-gopls" {
		t.Errorf("expected local go override, got %+v", cfg.LanguageServers["go"])
	}
	// Entries the local file doesn't mention still come from the default.
	if _, ok := cfg.LanguageServers["rust"]; !ok {
		t.Errorf("expected default rust entry to survive the merge")
	}
}

func TestApplyOverrideExplicitFalseWinsOverTrue(t *testing.T) {
	cfg := DefaultSettings()
	cfg.LSPEnabled = true

	disabled := false
	if err := applyOverride(cfg, &fileOverride{LSPEnabled: &disabled}); err != nil {
		t.Fatalf("applyOverride: %v", err)
	}
	if cfg.LSPEnabled {
		t.Errorf("expected an explicit false override to win over an inherited true")
	}

	// An override that doesn't mention the field at all must leave it alone.
	if err := applyOverride(cfg, &fileOverride{}); err != nil {
		t.Fatalf("applyOverride: %v", err)
	}
	if cfg.LSPEnabled {
		t.Errorf("expected LSPEnabled to stay false when the override omits the field")
	}
}

func TestSaveLocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := DefaultSettings()
	s.LSPEnabled = true
	if err := SaveLocal(dir, s); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.LSPEnabled {
		t.Errorf("expected saved LSPEnabled=true to round trip")
	}
}

func TestLanguageServerConfigLookup(t *testing.T) {
	s := DefaultSettings()
	cfg, ok := s.LanguageServerConfig("go")
	if !ok || cfg.Command != "gopls" {
		t.Errorf("got (%+v, %v), want gopls entry", cfg, ok)
	}
	if _, ok := s.LanguageServerConfig("nonexistent"); ok {
		t.Errorf("expected no entry for an unknown language key")
	}
}
