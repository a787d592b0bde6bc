// Package lsp implements the editor-facing core of a multi-language LSP
// integration layer: framed JSON-RPC transport over child-process stdio,
// a client state machine for one LSP session, and a registry that keeps
// one client per active language.
package lsp

import (
	"fmt"
	"strings"
)

// LanguageTag is a closed enumeration of languages the registry knows how
// to resolve a server for. Adding a language means adding a case to every
// switch below, not a generic lookup, since the set is small and fixed.
type LanguageTag int

const (
	LanguageRust LanguageTag = iota
	LanguageTypeScript
	LanguageJavaScript
	LanguagePython
	LanguageGo
	LanguageC
	LanguageCpp
	LanguageJava
	LanguageRuby
	LanguageBash
	LanguageCss
	LanguageHtml
	LanguageJson
	LanguageToml
	LanguageYaml
	LanguageMarkdown
	LanguageLua
	LanguageZig
	LanguageScala
	LanguagePhp
	LanguageOCaml
	LanguageSql
	LanguagePlain
)

// LanguageIDStr returns the LSP-wire languageId for tag, as sent in
// textDocument/didOpen.
func (t LanguageTag) LanguageIDStr() string {
	switch t {
	case LanguageRust:
		return "rust"
	case LanguageJavaScript:
		return "javascript"
	case LanguageTypeScript:
		return "typescript"
	case LanguagePython:
		return "python"
	case LanguageGo:
		return "go"
	case LanguageC:
		return "c"
	case LanguageCpp:
		return "cpp"
	case LanguageJava:
		return "java"
	case LanguageRuby:
		return "ruby"
	case LanguageBash:
		return "shellscript"
	case LanguageCss:
		return "css"
	case LanguageHtml:
		return "html"
	case LanguageJson:
		return "json"
	case LanguageToml:
		return "toml"
	case LanguageYaml:
		return "yaml"
	case LanguageMarkdown:
		return "markdown"
	case LanguageLua:
		return "lua"
	case LanguageZig:
		return "zig"
	case LanguageScala:
		return "scala"
	case LanguagePhp:
		return "php"
	case LanguageOCaml:
		return "ocaml"
	case LanguageSql:
		return "sql"
	default:
		return "plaintext"
	}
}

// LanguageKey returns the settings/discovery lookup key for tag. Several
// tags collapse onto one key (C and Cpp both resolve under "c").
func (t LanguageTag) LanguageKey() string {
	switch t {
	case LanguageRust:
		return "rust"
	case LanguageJavaScript:
		return "javascript"
	case LanguageTypeScript:
		return "typescript"
	case LanguagePython:
		return "python"
	case LanguageGo:
		return "go"
	case LanguageC, LanguageCpp:
		return "c"
	case LanguageJava:
		return "java"
	case LanguageRuby:
		return "ruby"
	case LanguageBash:
		return "bash"
	case LanguageCss:
		return "css"
	case LanguageHtml:
		return "html"
	case LanguageLua:
		return "lua"
	case LanguageZig:
		return "zig"
	default:
		return "other"
	}
}

func (t LanguageTag) String() string {
	return t.LanguageIDStr()
}

// LanguageFromExtension maps a file extension (without the leading dot,
// any case) to the LanguageTag a caller should open the file under. This
// is a CLI/editor-side convenience, not part of the registry's own
// contract: the registry never inspects file paths itself, callers
// always pass the tag they've already determined.
func LanguageFromExtension(ext string) (LanguageTag, bool) {
	switch strings.ToLower(ext) {
	case "rs":
		return LanguageRust, true
	case "ts", "tsx":
		return LanguageTypeScript, true
	case "js", "jsx", "mjs", "cjs":
		return LanguageJavaScript, true
	case "py", "pyi":
		return LanguagePython, true
	case "go":
		return LanguageGo, true
	case "c", "h":
		return LanguageC, true
	case "cpp", "cc", "cxx", "hpp", "hh":
		return LanguageCpp, true
	case "java":
		return LanguageJava, true
	case "rb":
		return LanguageRuby, true
	case "sh", "bash":
		return LanguageBash, true
	case "css":
		return LanguageCss, true
	case "html", "htm":
		return LanguageHtml, true
	case "json":
		return LanguageJson, true
	case "toml":
		return LanguageToml, true
	case "yaml", "yml":
		return LanguageYaml, true
	case "md", "markdown":
		return LanguageMarkdown, true
	case "lua":
		return LanguageLua, true
	case "zig":
		return LanguageZig, true
	case "scala":
		return LanguageScala, true
	case "php":
		return LanguagePhp, true
	case "ml", "mli":
		return LanguageOCaml, true
	case "sql":
		return LanguageSql, true
	default:
		return LanguagePlain, false
	}
}

// ServerConfig describes how to launch one language server. Immutable
// after construction.
type ServerConfig struct {
	Command string
	Args    []string
}

// DiagnosticSeverity mirrors LSP's diagnostic severity integers.
type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Information"
	case SeverityHint:
		return "Hint"
	default:
		return "Information"
	}
}

// SeverityFromLSP maps an LSP severity integer to DiagnosticSeverity.
// Absent or unrecognised values default to Information.
func SeverityFromLSP(n int) DiagnosticSeverity {
	switch n {
	case 1:
		return SeverityError
	case 2:
		return SeverityWarning
	case 3:
		return SeverityInformation
	case 4:
		return SeverityHint
	default:
		return SeverityInformation
	}
}

// Diagnostic is a single server-reported problem with a zero-based range.
type Diagnostic struct {
	StartLine uint32
	StartCol  uint32
	EndLine   uint32
	EndCol    uint32
	Severity  DiagnosticSeverity
	Message   string
}

// FileDiagnostics is the full diagnostic set for one file as of the most
// recent textDocument/publishDiagnostics notification. It supersedes any
// prior FileDiagnostics for the same path.
type FileDiagnostics struct {
	Path        string
	Diagnostics []Diagnostic
}

// CompletionKind is a closed projection of LSP's completion item kind
// integers (see SeverityFromLSP's sibling, CompletionKindFromLSP).
type CompletionKind int

const (
	CompletionFunction CompletionKind = iota
	CompletionVariable
	CompletionField
	CompletionModule
	CompletionStruct
	CompletionEnum
	CompletionKeyword
	CompletionSnippet
	CompletionMethod
	CompletionProperty
	CompletionConstant
	CompletionClass
	CompletionInterface
	CompletionOther
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionFunction:
		return "Function"
	case CompletionVariable:
		return "Variable"
	case CompletionField:
		return "Field"
	case CompletionModule:
		return "Module"
	case CompletionStruct:
		return "Struct"
	case CompletionEnum:
		return "Enum"
	case CompletionKeyword:
		return "Keyword"
	case CompletionSnippet:
		return "Snippet"
	case CompletionMethod:
		return "Method"
	case CompletionProperty:
		return "Property"
	case CompletionConstant:
		return "Constant"
	case CompletionClass:
		return "Class"
	case CompletionInterface:
		return "Interface"
	default:
		return "Other"
	}
}

// CompletionKindFromLSP maps an LSP CompletionItemKind integer onto the
// closed CompletionKind enum, per the table in the protocol design notes.
func CompletionKindFromLSP(n int) CompletionKind {
	switch n {
	case 2:
		return CompletionMethod
	case 3, 4:
		return CompletionFunction
	case 5:
		return CompletionField
	case 6:
		return CompletionVariable
	case 7:
		return CompletionClass
	case 8:
		return CompletionInterface
	case 9:
		return CompletionModule
	case 10:
		return CompletionProperty
	case 13:
		return CompletionEnum
	case 14:
		return CompletionKeyword
	case 15:
		return CompletionSnippet
	case 21:
		return CompletionConstant
	case 22:
		return CompletionStruct
	default:
		return CompletionOther
	}
}

// LspCompletionItem is one editor-facing completion suggestion.
type LspCompletionItem struct {
	Label      string
	Detail     string
	HasDetail  bool
	InsertText string
	Kind       CompletionKind
}

// HoverInfo carries the server's hover text for a position, plain or
// markdown at the server's choice.
type HoverInfo struct {
	Contents string
}

// LocationInfo is one definition/declaration target.
type LocationInfo struct {
	Path string
	Line uint32
	Col  uint32
}

// TransportError is the sentinel error family surfaced by Transport and
// propagated through Client.
type TransportError struct {
	Kind    TransportErrorKind
	Message string
}

// TransportErrorKind enumerates the ways a Transport call can fail.
type TransportErrorKind int

const (
	ErrSpawn TransportErrorKind = iota
	ErrServerExited
)

func (e *TransportError) Error() string {
	switch e.Kind {
	case ErrSpawn:
		return fmt.Sprintf("lsp: spawn failed: %s", e.Message)
	case ErrServerExited:
		return fmt.Sprintf("lsp: server exited: %s", e.Message)
	default:
		return fmt.Sprintf("lsp: transport error: %s", e.Message)
	}
}

func errSpawn(format string, args ...any) error {
	return &TransportError{Kind: ErrSpawn, Message: fmt.Sprintf(format, args...)}
}

func errServerExited(format string, args ...any) error {
	return &TransportError{Kind: ErrServerExited, Message: fmt.Sprintf(format, args...)}
}
