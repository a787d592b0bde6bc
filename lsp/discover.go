package lsp

import "os/exec"

// defaultServerFor is the hard-coded default {command, args} table per
// language, consulted when user settings don't name an entry (or name one
// whose command isn't on PATH).
func defaultServerFor(tag LanguageTag) (ServerConfig, bool) {
	switch tag {
	case LanguageRust:
		return ServerConfig{Command: "rust-analyzer"}, true
	case LanguageTypeScript, LanguageJavaScript:
		return ServerConfig{Command: "typescript-language-server", Args: []string{"--stdio"}}, true
	case LanguagePython:
		return ServerConfig{Command: "pyright-langserver", Args: []string{"--stdio"}}, true
	case LanguageGo:
		return ServerConfig{Command: "gopls"}, true
	case LanguageC, LanguageCpp:
		return ServerConfig{Command: "clangd"}, true
	case LanguageLua:
		return ServerConfig{Command: "lua-language-server"}, true
	case LanguageZig:
		return ServerConfig{Command: "zls"}, true
	case LanguageBash:
		return ServerConfig{Command: "bash-language-server", Args: []string{"start"}}, true
	case LanguageJava:
		return ServerConfig{Command: "jdtls"}, true
	case LanguageRuby:
		return ServerConfig{Command: "solargraph", Args: []string{"stdio"}}, true
	case LanguageCss:
		return ServerConfig{Command: "css-languageserver", Args: []string{"--stdio"}}, true
	case LanguageHtml:
		return ServerConfig{Command: "html-languageserver", Args: []string{"--stdio"}}, true
	default:
		return ServerConfig{}, false
	}
}

// fallbackServersFor lists alternate commands tried, in order, when the
// default command for tag isn't discoverable on PATH.
func fallbackServersFor(tag LanguageTag) []ServerConfig {
	switch tag {
	case LanguagePython:
		return []ServerConfig{
			{Command: "pylsp"},
			{Command: "python-lsp-server"},
		}
	case LanguageTypeScript, LanguageJavaScript:
		return []ServerConfig{
			{Command: "vtsls", Args: []string{"--stdio"}},
		}
	default:
		return nil
	}
}

// commandAvailable reports whether cmd resolves on PATH. This is the
// stdlib equivalent of a dedicated "which" lookup: no such package
// appears anywhere in the example corpus, and exec.LookPath is exactly
// what it would do.
func commandAvailable(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// DiscoverServer resolves a ServerConfig for tag using only the built-in
// default/fallback tables (no user settings). Returns false if no
// discoverable command exists for tag.
func DiscoverServer(tag LanguageTag) (ServerConfig, bool) {
	config, ok := defaultServerFor(tag)
	if !ok {
		return ServerConfig{}, false
	}
	if commandAvailable(config.Command) {
		return config, true
	}
	for _, fb := range fallbackServersFor(tag) {
		if commandAvailable(fb.Command) {
			return fb, true
		}
	}
	return ServerConfig{}, false
}

// LanguageServerSettings is the settings-surface shape the registry reads
// per language_key, per the spec's external-interfaces section. Loading
// and persisting these values from disk is out of the lsp package's
// scope; see the config package.
type LanguageServerSettings struct {
	Command string
	Args    []string
	Enabled bool
}

// ResolveServerConfig implements the three-tier resolution order: an
// enabled, discoverable user-configured command; else the default table;
// else the fallback table. Returns false if none apply.
func ResolveServerConfig(tag LanguageTag, userConfig LanguageServerSettings, hasUserConfig bool) (ServerConfig, bool) {
	if hasUserConfig && userConfig.Enabled && commandAvailable(userConfig.Command) {
		return ServerConfig{Command: userConfig.Command, Args: userConfig.Args}, true
	}
	return DiscoverServer(tag)
}
