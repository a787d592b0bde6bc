package lsp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// retryCooldown is how long a failed language sits before the next
// ensure_client_for call is allowed to spawn a new worker for it.
const retryCooldown = 60 * time.Second

// pendingOpen is a queued textDocument/didOpen waiting for its language's
// client to become ready.
type pendingOpen struct {
	path       string
	languageID string
	text       string
}

type spawnResult struct {
	tag    LanguageTag
	client *Client
	err    error
}

// SettingsLookup resolves the settings-surface entry for a language key,
// per §6's "Settings surface consumed" contract. The registry never reads
// or persists settings itself; a caller (e.g. the config package) owns
// that and supplies lookups through this interface.
type SettingsLookup interface {
	LanguageServerConfig(languageKey string) (LanguageServerSettings, bool)
}

// Registry maintains one Client per active language tag, lazily starting
// servers on first document event. PollReady drains its channel without
// blocking, and spawning happens on a short-lived worker goroutine so the
// caller's foreground thread never blocks on a slow language server
// starting up. RestartLanguage and StopAll do block: they wait for each
// stopped client's shutdown sequence (up to the shutdown timeout).
type Registry struct {
	mu sync.Mutex

	rootPath string
	enabled  bool

	clients  map[LanguageTag]*Client
	pending  map[LanguageTag]struct{}
	failedAt map[LanguageTag]time.Time
	queued   map[LanguageTag][]pendingOpen

	readyCh chan spawnResult
}

// NewRegistry returns an empty, disabled registry. Call SetRoot and
// SetEnabled before routing document events to it.
func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[LanguageTag]*Client),
		pending:  make(map[LanguageTag]struct{}),
		failedAt: make(map[LanguageTag]time.Time),
		queued:   make(map[LanguageTag][]pendingOpen),
		readyCh:  make(chan spawnResult, 16),
	}
}

// SetRoot sets the workspace root new clients are initialized against.
func (r *Registry) SetRoot(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rootPath = path
}

// SetEnabled gates ensure_client_for: when disabled, no new servers are
// spawned. Existing clients are left running; this mirrors the original
// global lsp_enabled toggle, which gates new activity without tearing
// down what's already up.
func (r *Registry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// ApplySettings reacts to a reloaded settings file: it applies the new
// global enabled switch, then re-runs EnsureClientFor for each of
// languages so a language newly enabled on disk starts without the
// caller having to restart or wait for the next document open.
func (r *Registry) ApplySettings(enabled bool, languages []LanguageTag, settings SettingsLookup) {
	r.SetEnabled(enabled)
	for _, tag := range languages {
		r.EnsureClientFor(tag, settings)
	}
}

// PollReady drains the spawn-result channel without blocking. Each
// successful spawn is installed into the ready table and its queued opens
// replayed in enqueue order; each failure records a cooldown timestamp and
// discards that language's queued opens.
func (r *Registry) PollReady() {
	for {
		select {
		case result := <-r.readyCh:
			r.applySpawnResult(result)
		default:
			return
		}
	}
}

func (r *Registry) applySpawnResult(result spawnResult) {
	r.mu.Lock()
	delete(r.pending, result.tag)

	if result.err != nil {
		r.failedAt[result.tag] = time.Now()
		delete(r.queued, result.tag)
		r.mu.Unlock()
		return
	}

	r.clients[result.tag] = result.client
	opens := r.queued[result.tag]
	delete(r.queued, result.tag)
	r.mu.Unlock()

	for _, open := range opens {
		_ = result.client.DidOpen(open.path, open.languageID, open.text)
	}
}

// EnsureClientFor starts a server for tag if none is ready or pending and
// the failure cooldown (if any) has elapsed. It never blocks: spawn and
// initialize happen on a worker goroutine that reports back through
// PollReady.
func (r *Registry) EnsureClientFor(tag LanguageTag, settings SettingsLookup) {
	r.mu.Lock()

	if !r.enabled {
		r.mu.Unlock()
		return
	}
	if _, ready := r.clients[tag]; ready {
		r.mu.Unlock()
		return
	}
	if _, isPending := r.pending[tag]; isPending {
		r.mu.Unlock()
		return
	}
	if failedAt, failed := r.failedAt[tag]; failed {
		if time.Since(failedAt) < retryCooldown {
			r.mu.Unlock()
			return
		}
		delete(r.failedAt, tag)
	}
	if r.rootPath == "" {
		r.mu.Unlock()
		return
	}

	config, ok := r.resolveConfig(tag, settings)
	if !ok {
		r.mu.Unlock()
		return
	}
	r.pending[tag] = struct{}{}
	root := r.rootPath
	r.mu.Unlock()

	go r.spawnWorker(tag, config, root)
}

func (r *Registry) resolveConfig(tag LanguageTag, settings SettingsLookup) (ServerConfig, bool) {
	if settings == nil {
		return DiscoverServer(tag)
	}
	userConfig, hasUserConfig := settings.LanguageServerConfig(tag.LanguageKey())
	return ResolveServerConfig(tag, userConfig, hasUserConfig)
}

func (r *Registry) spawnWorker(tag LanguageTag, config ServerConfig, root string) {
	client, err := StartClient(config, root)
	if err != nil {
		r.readyCh <- spawnResult{tag: tag, err: fmt.Errorf("spawn failed: %w", err)}
		return
	}
	if err := client.Initialize(); err != nil {
		client.Stop()
		r.readyCh <- spawnResult{tag: tag, err: fmt.Errorf("initialize failed: %w", err)}
		return
	}
	r.readyCh <- spawnResult{tag: tag, client: client}
}

// ClientFor returns the ready client for tag, if any.
func (r *Registry) ClientFor(tag LanguageTag) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[tag]
	return c, ok
}

// HasClientFor reports whether tag currently has a ready client.
func (r *Registry) HasClientFor(tag LanguageTag) bool {
	_, ok := r.ClientFor(tag)
	return ok
}

// ActiveLanguages returns the tags with a ready client.
func (r *Registry) ActiveLanguages() []LanguageTag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LanguageTag, 0, len(r.clients))
	for tag := range r.clients {
		out = append(out, tag)
	}
	return out
}

// PendingLanguages returns the tags with an in-flight spawn.
func (r *Registry) PendingLanguages() []LanguageTag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LanguageTag, 0, len(r.pending))
	for tag := range r.pending {
		out = append(out, tag)
	}
	return out
}

// FailedLanguages returns the tags currently sitting in the failure
// cooldown, alongside how much longer each cooldown has left.
func (r *Registry) FailedLanguages() map[LanguageTag]time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[LanguageTag]time.Duration, len(r.failedAt))
	for tag, at := range r.failedAt {
		remaining := retryCooldown - time.Since(at)
		if remaining < 0 {
			remaining = 0
		}
		out[tag] = remaining
	}
	return out
}

// DrainDiagnostics collects every diagnostics message currently buffered
// on every ready client, without blocking.
func (r *Registry) DrainDiagnostics() []FileDiagnostics {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	var all []FileDiagnostics
	for _, c := range clients {
		rx := c.DiagnosticsRx()
	drain:
		for {
			select {
			case d, ok := <-rx:
				if !ok {
					break drain
				}
				all = append(all, d)
			default:
				break drain
			}
		}
	}
	return all
}

// NotifyDidOpen routes a document-open event: it ensures a client exists
// for tag, then either forwards the open immediately (client ready) or
// enqueues it (spawn still pending). If neither a ready nor a pending
// client exists after EnsureClientFor (e.g. no resolvable server), the
// open is silently dropped.
func (r *Registry) NotifyDidOpen(tag LanguageTag, path, text string, settings SettingsLookup) {
	r.EnsureClientFor(tag, settings)

	r.mu.Lock()
	client, ready := r.clients[tag]
	if ready {
		r.mu.Unlock()
		_ = client.DidOpen(path, tag.LanguageIDStr(), text)
		return
	}
	if _, isPending := r.pending[tag]; isPending {
		r.queued[tag] = append(r.queued[tag], pendingOpen{
			path:       path,
			languageID: tag.LanguageIDStr(),
			text:       text,
		})
	}
	r.mu.Unlock()
}

// NotifyDidChange forwards a full-document change only if tag already has
// a ready client; it never starts a server. A didChange that arrives
// while the server is still initializing is dropped, not queued — the
// open that eventually replays carries whatever text notify_did_open was
// called with, which callers should treat as the canonical initial text
// for that document.
func (r *Registry) NotifyDidChange(tag LanguageTag, path, text string, version int) {
	client, ok := r.ClientFor(tag)
	if !ok {
		return
	}
	_ = client.DidChange(path, text, version)
}

// NotifyDidSave forwards textDocument/didSave if tag has a ready client.
func (r *Registry) NotifyDidSave(tag LanguageTag, path string) {
	if client, ok := r.ClientFor(tag); ok {
		_ = client.DidSave(path)
	}
}

// NotifyDidClose forwards textDocument/didClose if tag has a ready client.
func (r *Registry) NotifyDidClose(tag LanguageTag, path string) {
	if client, ok := r.ClientFor(tag); ok {
		_ = client.DidClose(path)
	}
}

// RestartLanguage stops any existing client for tag (best effort), clears
// its failure and pending markers and queued opens, and re-runs
// EnsureClientFor.
func (r *Registry) RestartLanguage(tag LanguageTag, settings SettingsLookup) {
	r.mu.Lock()
	client, had := r.clients[tag]
	delete(r.clients, tag)
	delete(r.failedAt, tag)
	delete(r.pending, tag)
	delete(r.queued, tag)
	r.mu.Unlock()

	if had {
		client.Stop()
	}
	r.EnsureClientFor(tag, settings)
}

// StopAll stops every ready client in parallel and clears all side maps,
// returning once every client's stop has finished. Client.Stop reports no
// error, so the returned error is always nil; ctx does not cut the wait
// short.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[LanguageTag]*Client)
	r.pending = make(map[LanguageTag]struct{})
	r.failedAt = make(map[LanguageTag]time.Time)
	r.queued = make(map[LanguageTag][]pendingOpen)
	r.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, c := range clients {
		c := c
		g.Go(func() error {
			c.Stop()
			return nil
		})
	}
	return g.Wait()
}
