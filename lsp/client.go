package lsp

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Client is a stateful wrapper around one Transport representing one
// initialized LSP session. It knows the workspace root URI and the
// server's advertised capabilities, and exposes the document lifecycle
// and typed request helpers an editor needs.
type Client struct {
	transport *Transport
	rootURI   string

	mu           sync.Mutex
	capabilities json.RawMessage
	stopped      bool
}

const (
	initializeTimeout = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// StartClient spawns config and returns a Client bound to its transport.
// The caller must still call Initialize before using the session.
func StartClient(config ServerConfig, rootPath string) (*Client, error) {
	transport, err := Spawn(config)
	if err != nil {
		return nil, err
	}
	return &Client{
		transport: transport,
		rootURI:   PathToURI(rootPath),
	}, nil
}

// Initialize performs the initialize/initialized handshake. On timeout or
// server-reported error the handshake fails and the caller must Stop the
// client before discarding it.
func (c *Client) Initialize() error {
	params := map[string]any{
		"processId": os.Getpid(),
		"rootUri":   c.rootURI,
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"completion": map[string]any{
					"completionItem": map[string]any{
						"snippetSupport":      false,
						"labelDetailsSupport": true,
					},
					"contextSupport": true,
				},
				"hover": map[string]any{
					"contentFormat": []string{"plaintext", "markdown"},
				},
				"publishDiagnostics": map[string]any{
					"relatedInformation": false,
				},
				"definition": map[string]any{},
				"synchronization": map[string]any{
					"didSave":          true,
					"willSave":         false,
					"willSaveWaitUntil": false,
				},
			},
			"workspace": map[string]any{
				"workspaceFolders": false,
			},
		},
		"initializationOptions": nil,
	}

	_, rx, err := c.transport.SendRequest("initialize", params)
	if err != nil {
		return err
	}

	select {
	case frame, ok := <-rx:
		if !ok {
			return errServerExited("initialize: transport stopped before reply")
		}
		var resp struct {
			Result json.RawMessage `json:"result"`
			Error  *jsonrpcError   `json:"error"`
		}
		if err := json.Unmarshal(frame, &resp); err == nil {
			if resp.Error != nil {
				return fmt.Errorf("lsp: initialize: server error %d: %s", resp.Error.Code, resp.Error.Message)
			}
			c.mu.Lock()
			c.capabilities = resp.Result
			c.mu.Unlock()
		}
		return c.transport.SendNotification("initialized", map[string]any{})
	case <-time.After(initializeTimeout):
		return errServerExited("initialize timed out after %s", initializeTimeout)
	}
}

// DidOpen sends textDocument/didOpen for path at version 1.
func (c *Client) DidOpen(path, languageID, text string) error {
	return c.transport.SendNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        PathToURI(path),
			"languageId": languageID,
			"version":    1,
			"text":       text,
		},
	})
}

// DidChange sends a full-document textDocument/didChange. version must be
// strictly increasing per document; the transport forwards it verbatim.
func (c *Client) DidChange(path, text string, version int) error {
	return c.transport.SendNotification("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{
			"uri":     PathToURI(path),
			"version": version,
		},
		"contentChanges": []map[string]any{{"text": text}},
	})
}

// DidSave sends textDocument/didSave.
func (c *Client) DidSave(path string) error {
	return c.transport.SendNotification("textDocument/didSave", map[string]any{
		"textDocument": map[string]any{"uri": PathToURI(path)},
	})
}

// DidClose sends textDocument/didClose.
func (c *Client) DidClose(path string) error {
	return c.transport.SendNotification("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": PathToURI(path)},
	})
}

func (c *Client) positionRequest(method, path string, line, col uint32) (<-chan json.RawMessage, error) {
	_, rx, err := c.transport.SendRequest(method, map[string]any{
		"textDocument": map[string]any{"uri": PathToURI(path)},
		"position":     map[string]any{"line": line, "character": col},
	})
	return rx, err
}

// Completion sends textDocument/completion and returns the reply
// receiver; parse it with ParseCompletionResponse.
func (c *Client) Completion(path string, line, col uint32) (<-chan json.RawMessage, error) {
	return c.positionRequest("textDocument/completion", path, line, col)
}

// Hover sends textDocument/hover and returns the reply receiver; parse it
// with ParseHoverResponse.
func (c *Client) Hover(path string, line, col uint32) (<-chan json.RawMessage, error) {
	return c.positionRequest("textDocument/hover", path, line, col)
}

// GotoDefinition sends textDocument/definition and returns the reply
// receiver; parse it with ParseDefinitionResponse.
func (c *Client) GotoDefinition(path string, line, col uint32) (<-chan json.RawMessage, error) {
	return c.positionRequest("textDocument/definition", path, line, col)
}

// DiagnosticsRx returns the transport's diagnostics broadcast channel.
func (c *Client) DiagnosticsRx() <-chan FileDiagnostics {
	return c.transport.DiagnosticsRx()
}

// Stop performs the shutdown/exit sequence and tears down the transport.
// Idempotent: a second call is a no-op.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.shutdown()
	c.transport.Stop()
}

func (c *Client) shutdown() {
	_, rx, err := c.transport.SendRequest("shutdown", nil)
	if err == nil {
		select {
		case <-rx:
		case <-time.After(shutdownTimeout):
		}
	}
	_ = c.transport.SendNotification("exit", nil)
}

// ParseCompletionResponse extracts completion items from a raw
// completion JSON-RPC response frame. Missing or
// wrongly-shaped fields are treated as absence, never as fatal.
func ParseCompletionResponse(frame json.RawMessage) []LspCompletionItem {
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(frame, &resp); err != nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(resp.Result, &asArray); err != nil {
		var asList struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(resp.Result, &asList); err != nil || asList.Items == nil {
			return nil
		}
		asArray = asList.Items
	}

	items := make([]LspCompletionItem, 0, len(asArray))
	for _, raw := range asArray {
		var item struct {
			Label      string `json:"label"`
			Detail     *string `json:"detail"`
			InsertText *string `json:"insertText"`
			TextEdit   *struct {
				NewText string `json:"newText"`
			} `json:"textEdit"`
			Kind *int `json:"kind"`
		}
		if err := json.Unmarshal(raw, &item); err != nil || item.Label == "" {
			continue
		}

		insertText := item.Label
		switch {
		case item.InsertText != nil:
			insertText = StripSnippetSyntax(*item.InsertText)
		case item.TextEdit != nil:
			insertText = StripSnippetSyntax(item.TextEdit.NewText)
		}

		kind := CompletionOther
		if item.Kind != nil {
			kind = CompletionKindFromLSP(*item.Kind)
		}

		out := LspCompletionItem{
			Label:      item.Label,
			InsertText: insertText,
			Kind:       kind,
		}
		if item.Detail != nil {
			out.Detail = *item.Detail
			out.HasDetail = true
		}
		items = append(items, out)
	}
	return items
}

// ParseHoverResponse extracts hover text from a raw hover JSON-RPC
// response frame. Returns (info, false) when result is null, absent, or
// resolves to empty text.
func ParseHoverResponse(frame json.RawMessage) (HoverInfo, bool) {
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(frame, &resp); err != nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return HoverInfo{}, false
	}

	var result struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil || len(result.Contents) == 0 {
		return HoverInfo{}, false
	}

	text := decodeHoverContents(result.Contents)
	if text == "" {
		return HoverInfo{}, false
	}
	return HoverInfo{Contents: text}, true
}

func decodeHoverContents(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asObject struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Value != "" {
		return asObject.Value
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(raw, &asArray); err == nil {
		parts := make([]string, 0, len(asArray))
		for _, item := range asArray {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				parts = append(parts, s)
				continue
			}
			var obj struct {
				Value string `json:"value"`
			}
			if err := json.Unmarshal(item, &obj); err == nil && obj.Value != "" {
				parts = append(parts, obj.Value)
			}
		}
		return joinDoubleNewline(parts)
	}

	return ""
}

func joinDoubleNewline(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n\n"
		}
		out += p
	}
	return out
}

// ParseDefinitionResponse extracts definition/declaration locations from a
// raw definition JSON-RPC response frame. Entries with a non-file URI or
// missing required fields are skipped silently.
func ParseDefinitionResponse(frame json.RawMessage) []LocationInfo {
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(frame, &resp); err != nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}

	var rawLocations []json.RawMessage
	if err := json.Unmarshal(resp.Result, &rawLocations); err != nil {
		// Not an array: treat the whole result as a single location object.
		rawLocations = []json.RawMessage{resp.Result}
	}

	var out []LocationInfo
	for _, raw := range rawLocations {
		loc, ok := decodeLocation(raw)
		if ok {
			out = append(out, loc)
		}
	}
	return out
}

func decodeLocation(raw json.RawMessage) (LocationInfo, bool) {
	var loc struct {
		URI                string     `json:"uri"`
		TargetURI          string     `json:"targetUri"`
		Range              *wireRange `json:"range"`
		TargetSelectionRange *wireRange `json:"targetSelectionRange"`
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return LocationInfo{}, false
	}

	uri := loc.URI
	if uri == "" {
		uri = loc.TargetURI
	}
	if uri == "" {
		return LocationInfo{}, false
	}

	path, err := URIToPath(uri)
	if err != nil {
		return LocationInfo{}, false
	}

	rng := loc.Range
	if rng == nil {
		rng = loc.TargetSelectionRange
	}
	if rng == nil {
		return LocationInfo{}, false
	}

	return LocationInfo{Path: path, Line: rng.Start.Line, Col: rng.Start.Character}, true
}
