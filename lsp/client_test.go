package lsp

import (
	"encoding/json"
	"testing"
)

func TestParseCompletionResponseArrayResult(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":[
		{"label":"foo","detail":"func()","insertText":"foo()","kind":3},
		{"label":"bar","kind":6}
	]}`)

	items := ParseCompletionResponse(frame)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Label != "foo" || items[0].InsertText != "foo()" || items[0].Kind != CompletionFunction {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if !items[0].HasDetail || items[0].Detail != "func()" {
		t.Errorf("expected detail on first item, got %+v", items[0])
	}
	if items[1].Label != "bar" || items[1].InsertText != "bar" || items[1].Kind != CompletionVariable {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestParseCompletionResponseItemsWrapper(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":{"isIncomplete":false,"items":[{"label":"x"}]}}`)
	items := ParseCompletionResponse(frame)
	if len(items) != 1 || items[0].Label != "x" {
		t.Fatalf("got %+v, want one item labeled x", items)
	}
}

func TestParseCompletionResponseSnippetStripped(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":[{"label":"foo","insertText":"foo(${1:a}, ${2:b})"}]}`)
	items := ParseCompletionResponse(frame)
	if len(items) != 1 || items[0].InsertText != "foo(a, b)" {
		t.Fatalf("got %+v, want insert text foo(a, b)", items)
	}
}

func TestParseCompletionResponseNullResult(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":null}`)
	if items := ParseCompletionResponse(frame); items != nil {
		t.Errorf("got %+v, want nil", items)
	}
}

func TestParseHoverResponseStringContents(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":{"contents":"hello"}}`)
	info, ok := ParseHoverResponse(frame)
	if !ok || info.Contents != "hello" {
		t.Fatalf("got (%+v, %v), want (hello, true)", info, ok)
	}
}

func TestParseHoverResponseObjectContents(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":{"contents":{"kind":"markdown","value":"**hi**"}}}`)
	info, ok := ParseHoverResponse(frame)
	if !ok || info.Contents != "**hi**" {
		t.Fatalf("got (%+v, %v), want (**hi**, true)", info, ok)
	}
}

func TestParseHoverResponseArrayContentsJoined(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":{"contents":["a",{"value":"b"}]}}`)
	info, ok := ParseHoverResponse(frame)
	if !ok || info.Contents != "a\n\nb" {
		t.Fatalf("got (%+v, %v), want (a\\n\\nb, true)", info, ok)
	}
}

func TestParseHoverResponseNullResult(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":null}`)
	if _, ok := ParseHoverResponse(frame); ok {
		t.Errorf("expected ok=false for null result")
	}
}

func TestParseDefinitionResponseLocationLinkArray(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":[
		{"targetUri":"file:///a.rs","targetSelectionRange":{"start":{"line":10,"character":4},"end":{"line":10,"character":9}}}
	]}`)
	locs := ParseDefinitionResponse(frame)
	if len(locs) != 1 {
		t.Fatalf("got %d locations, want 1", len(locs))
	}
	want := LocationInfo{Path: "/a.rs", Line: 10, Col: 4}
	if locs[0] != want {
		t.Errorf("got %+v, want %+v", locs[0], want)
	}
}

func TestParseDefinitionResponseSingleObject(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":{"uri":"file:///b.go","range":{"start":{"line":1,"character":2},"end":{"line":1,"character":5}}}}`)
	locs := ParseDefinitionResponse(frame)
	if len(locs) != 1 || locs[0].Path != "/b.go" || locs[0].Line != 1 || locs[0].Col != 2 {
		t.Fatalf("got %+v", locs)
	}
}

func TestParseDefinitionResponseNullResult(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":null}`)
	if locs := ParseDefinitionResponse(frame); locs != nil {
		t.Errorf("got %+v, want nil", locs)
	}
}

func TestParseDefinitionResponseSkipsNonFileURI(t *testing.T) {
	frame := []byte(`{"jsonrpc":"2.0","id":1,"result":[{"uri":"untitled:Untitled-1","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}}}]}`)
	if locs := ParseDefinitionResponse(frame); len(locs) != 0 {
		t.Errorf("got %+v, want no locations for non-file uri", locs)
	}
}

func TestCompletionResponseRoundTrip(t *testing.T) {
	items := []LspCompletionItem{
		{Label: "alpha", InsertText: "alpha", Kind: CompletionFunction},
		{Label: "beta", InsertText: "beta", Kind: CompletionVariable, Detail: "x", HasDetail: true},
	}

	built := make([]map[string]any, 0, len(items))
	for _, it := range items {
		entry := map[string]any{
			"label":      it.Label,
			"insertText": it.InsertText,
			"kind":       lspKindFor(it.Kind),
		}
		if it.HasDetail {
			entry["detail"] = it.Detail
		}
		built = append(built, entry)
	}
	payload, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "result": built})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := ParseCompletionResponse(payload)
	if len(got) != len(items) {
		t.Fatalf("got %d items, want %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Errorf("item %d: got %+v, want %+v", i, got[i], items[i])
		}
	}
}

// lspKindFor inverts CompletionKindFromLSP for one representative LSP
// integer per kind, enough to round-trip the kinds this test builds.
func lspKindFor(k CompletionKind) int {
	switch k {
	case CompletionFunction:
		return 3
	case CompletionVariable:
		return 6
	case CompletionField:
		return 5
	case CompletionModule:
		return 9
	case CompletionStruct:
		return 22
	case CompletionEnum:
		return 13
	case CompletionKeyword:
		return 14
	case CompletionSnippet:
		return 15
	case CompletionMethod:
		return 2
	case CompletionProperty:
		return 10
	case CompletionConstant:
		return 21
	case CompletionClass:
		return 7
	case CompletionInterface:
		return 8
	default:
		return 0
	}
}
