package lsp

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeSettings struct {
	cfg map[string]LanguageServerSettings
}

func (f *fakeSettings) LanguageServerConfig(key string) (LanguageServerSettings, bool) {
	c, ok := f.cfg[key]
	return c, ok
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRegistryQueuedOpenReplay(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(true)
	r.SetRoot(t.TempDir())

	tag := LanguagePython

	// Simulate a spawn already in flight so NotifyDidOpen queues instead
	// of forwarding immediately or starting a second spawn.
	r.mu.Lock()
	r.pending[tag] = struct{}{}
	r.mu.Unlock()

	r.NotifyDidOpen(tag, "/tmp/f.py", "print(1)", nil)

	tr, serverRead, _ := newTestTransport(t)
	client := &Client{transport: tr, rootURI: PathToURI(t.TempDir())}

	r.applySpawnResult(spawnResult{tag: tag, client: client})

	frame := readFrame(t, serverRead)
	if !strings.Contains(frame, "textDocument/didOpen") || !strings.Contains(frame, "f.py") {
		t.Errorf("got frame %s, want a didOpen for f.py", frame)
	}
	if !r.HasClientFor(tag) {
		t.Errorf("expected tag to have a ready client after applySpawnResult")
	}
}

func TestRegistryQueuedOpenDiscardedOnFailure(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(true)
	r.SetRoot(t.TempDir())

	tag := LanguagePython
	r.mu.Lock()
	r.pending[tag] = struct{}{}
	r.mu.Unlock()

	r.NotifyDidOpen(tag, "/tmp/f.py", "print(1)", nil)

	r.applySpawnResult(spawnResult{tag: tag, err: errServerExited("boom")})

	r.mu.Lock()
	_, queued := r.queued[tag]
	_, failed := r.failedAt[tag]
	r.mu.Unlock()

	if queued {
		t.Errorf("expected queued opens to be discarded after a failed spawn")
	}
	if !failed {
		t.Errorf("expected tag to be marked failed")
	}
}

func TestRegistryEnsureClientNoOpWhenReady(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(true)
	r.SetRoot(t.TempDir())
	tag := LanguageGo

	tr, _, _ := newTestTransport(t)
	r.mu.Lock()
	r.clients[tag] = &Client{transport: tr}
	r.mu.Unlock()

	r.EnsureClientFor(tag, nil)

	r.mu.Lock()
	_, isPending := r.pending[tag]
	r.mu.Unlock()
	if isPending {
		t.Errorf("EnsureClientFor must not spawn when a ready client already exists")
	}
}

func TestRegistryDisabledSkipsSpawn(t *testing.T) {
	r := NewRegistry()
	r.SetRoot(t.TempDir())
	// enabled defaults to false

	r.EnsureClientFor(LanguageGo, nil)

	r.mu.Lock()
	_, isPending := r.pending[LanguageGo]
	r.mu.Unlock()
	if isPending {
		t.Errorf("EnsureClientFor must not spawn while the registry is disabled")
	}
}

func TestRegistryFailureCooldown(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(true)
	r.SetRoot(t.TempDir())

	tag := LanguagePython
	settings := &fakeSettings{cfg: map[string]LanguageServerSettings{
		// "false" exits immediately with a nonzero status, which fails
		// the initialize handshake fast without needing a real server.
		tag.LanguageKey(): {Command: "false", Enabled: true},
	}}

	r.EnsureClientFor(tag, settings)

	waitFor(t, 5*time.Second, func() bool {
		r.PollReady()
		r.mu.Lock()
		defer r.mu.Unlock()
		_, failed := r.failedAt[tag]
		return failed
	})

	// A second call within the cooldown window must not re-enter pending.
	r.EnsureClientFor(tag, settings)
	r.mu.Lock()
	_, isPending := r.pending[tag]
	r.mu.Unlock()
	if isPending {
		t.Errorf("EnsureClientFor spawned a new worker within the cooldown window")
	}
}

func TestRegistryNotifyDidChangeDropsWithoutReadyClient(t *testing.T) {
	r := NewRegistry()
	// Must not panic and must be a silent no-op.
	r.NotifyDidChange(LanguageGo, "/tmp/a.go", "package main", 2)
}

func TestRegistryStopAllStopsReadyClients(t *testing.T) {
	r := NewRegistry()
	tag := LanguageGo
	tr, _, _ := newTestTransport(t)
	client := &Client{transport: tr}

	r.mu.Lock()
	r.clients[tag] = client
	r.mu.Unlock()

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	if len(r.ActiveLanguages()) != 0 {
		t.Errorf("expected no active languages after StopAll")
	}
	if _, _, err := tr.SendRequest("x", nil); err == nil {
		t.Errorf("expected transport to be stopped after StopAll")
	}
}

func TestRegistryRestartLanguageClearsState(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled(true)
	r.SetRoot(t.TempDir())

	tag := LanguageGo
	tr, _, _ := newTestTransport(t)
	r.mu.Lock()
	r.clients[tag] = &Client{transport: tr}
	r.failedAt[tag] = time.Now()
	r.mu.Unlock()

	// No discoverable server for Go in this environment is fine; the
	// point is that the prior ready/failed state is cleared regardless.
	r.RestartLanguage(tag, nil)

	r.mu.Lock()
	_, stillFailed := r.failedAt[tag]
	_, stillReady := r.clients[tag]
	r.mu.Unlock()
	if stillFailed {
		t.Errorf("expected failure marker to be cleared by RestartLanguage")
	}
	if stillReady {
		t.Errorf("expected the old client to be removed by RestartLanguage")
	}
}
