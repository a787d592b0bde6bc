// Package config is the ambient, CLI-only settings layer. The lsp package
// never reads or writes settings itself; this package loads, merges, and
// watches a two-tier settings file and hands the result to the registry
// through the lsp.SettingsLookup interface.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"

	"polyglotls/lsp"
)

// LanguageServerConfig is the on-disk shape of one language's server
// override, keyed by lsp.LanguageTag.LanguageKey() in Settings.
type LanguageServerConfig struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Enabled bool     `json:"enabled"`
}

// Settings is the full settings document: the global LSP enable switch
// plus per-language server overrides.
type Settings struct {
	LSPEnabled      bool                            `json:"lsp_enabled"`
	LanguageServers map[string]LanguageServerConfig `json:"language_servers,omitempty"`
}

// LanguageServerConfig implements lsp.SettingsLookup.
func (s *Settings) LanguageServerConfig(languageKey string) (lsp.LanguageServerSettings, bool) {
	c, ok := s.LanguageServers[languageKey]
	if !ok {
		return lsp.LanguageServerSettings{}, false
	}
	return lsp.LanguageServerSettings{Command: c.Command, Args: c.Args, Enabled: c.Enabled}, true
}

// DefaultSettings mirrors the language-server defaults the discovery
// table already knows, so a freshly created settings file documents what
// the registry would try anyway.
func DefaultSettings() *Settings {
	return &Settings{
		LSPEnabled: false,
		LanguageServers: map[string]LanguageServerConfig{
			"rust":       {Command: "rust-analyzer", Enabled: true},
			"typescript": {Command: "typescript-language-server", Args: []string{"--stdio"}, Enabled: true},
			"python":     {Command: "pyright-langserver", Args: []string{"--stdio"}, Enabled: true},
			"go":         {Command: "gopls", Enabled: true},
			"c":          {Command: "clangd", Enabled: true},
			"lua":        {Command: "lua-language-server", Enabled: true},
			"zig":        {Command: "zls", Enabled: true},
			"bash":       {Command: "bash-language-server", Args: []string{"start"}, Enabled: true},
		},
	}
}

// globalSettingsPath returns ~/.config/polyglotls/settings.json (or the
// platform equivalent via os.UserConfigDir).
func globalSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "polyglotls", "settings.json"), nil
}

// localSettingsPath returns <workspacePath>/.polyglotls/settings.json.
func localSettingsPath(workspacePath string) string {
	return filepath.Join(workspacePath, ".polyglotls", "settings.json")
}

// fileOverride is the on-disk shape used while merging: LSPEnabled is a
// pointer so "field absent" (nil) is distinguishable from an explicit
// "false", which a plain bool can't represent. A plain bool on Settings
// is fine for every other consumer; only the merge step needs the
// tri-state.
type fileOverride struct {
	LSPEnabled      *bool                            `json:"lsp_enabled"`
	LanguageServers map[string]LanguageServerConfig `json:"language_servers,omitempty"`
}

// Load reads the global settings file, then overlays the workspace-local
// one on top (local wins field-by-field), returning DefaultSettings when
// neither file exists. An explicit "lsp_enabled": false in the local file
// overrides a "true" inherited from global, since it's read through the
// pointer-typed overlay rather than merged as a plain bool.
func Load(workspacePath string) (*Settings, error) {
	cfg := DefaultSettings()

	if globalPath, err := globalSettingsPath(); err == nil {
		if global, err := loadFileOverride(globalPath); err == nil {
			if err := applyOverride(cfg, global); err != nil {
				return nil, fmt.Errorf("config: merge global settings: %w", err)
			}
		}
	}

	if local, err := loadFileOverride(localSettingsPath(workspacePath)); err == nil {
		if err := applyOverride(cfg, local); err != nil {
			return nil, fmt.Errorf("config: merge local settings: %w", err)
		}
	}

	return cfg, nil
}

func applyOverride(cfg *Settings, override *fileOverride) error {
	if override.LSPEnabled != nil {
		cfg.LSPEnabled = *override.LSPEnabled
	}
	if len(override.LanguageServers) == 0 {
		return nil
	}
	if cfg.LanguageServers == nil {
		cfg.LanguageServers = make(map[string]LanguageServerConfig, len(override.LanguageServers))
	}
	return mergo.Merge(&cfg.LanguageServers, override.LanguageServers, mergo.WithOverride)
}

func loadFileOverride(path string) (*fileOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var o fileOverride
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &o, nil
}

// SaveLocal writes settings to the workspace-local settings file,
// creating its directory if needed.
func SaveLocal(workspacePath string, s *Settings) error {
	path := localSettingsPath(workspacePath)
	return save(path, s)
}

// SaveGlobal writes settings to the global settings file, creating its
// directory if needed.
func SaveGlobal(s *Settings) error {
	path, err := globalSettingsPath()
	if err != nil {
		return err
	}
	return save(path, s)
}

func save(path string, s *Settings) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return errors.New("config: invalid settings directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write settings: %w", err)
	}
	return nil
}
