package lsp

import "testing"

func TestURIRoundTrip(t *testing.T) {
	path := "/tmp/a/b.py"
	uri := PathToURI(path)
	got, err := URIToPath(uri)
	if err != nil {
		t.Fatalf("URIToPath(%q): %v", uri, err)
	}
	if got != path {
		t.Errorf("round trip: got %q, want %q", got, path)
	}
}

func TestURIToPathRejectsNonFileScheme(t *testing.T) {
	if _, err := URIToPath("https://example.com/a.py"); err == nil {
		t.Errorf("expected error for non-file URI")
	}
}

func TestPathToURIHasFileScheme(t *testing.T) {
	uri := PathToURI("/tmp/a.py")
	if len(uri) < 7 || uri[:7] != "file://" {
		t.Errorf("PathToURI() = %q, want file:// prefix", uri)
	}
}
