// Package registry holds the configured LSP server specs, spawns
// them lazily on first demand, and routes a file path to the right
// client by extension map, glob match, and project-marker heuristics.
package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/lspclient"
	"github.com/mcpls/mcpls/internal/protocol"
)

// ServerSpec is one configured `[[lsp_servers]]` entry.
type ServerSpec struct {
	LanguageID            string
	Command               string
	Args                  []string
	Env                   []string
	FilePatterns          []string
	TimeoutSeconds        int
	InitializationOptions any
	ProjectMarkers        []string
}

// ClientFactory spawns and initializes the LSP client for spec,
// rooted at rootURI. Injected so tests can substitute a fake client
// instead of spawning a real child process, and so the caller (the
// bridge) retains ownership of wiring the client's notification
// channel to its own notifcache.Cache.
type ClientFactory func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error)

// Config is the registry's static configuration, derived from the
// TOML [workspace] and [[lsp_servers]]/[[language_extensions]] tables.
type Config struct {
	WorkspaceRoots     []string // canonical absolute paths
	HeuristicsMaxDepth int
	Specs              []ServerSpec
	LanguageExtensions map[string]string // extension (with leading dot) -> language id
}

type clientEntry struct {
	spec ServerSpec

	mu     sync.Mutex
	client *lspclient.Client
	err    error
	done   chan struct{} // non-nil while a spawn is in flight
}

// SpecStatus is one row of a registry status snapshot.
type SpecStatus struct {
	LanguageID string
	Command    string
	State      string // lspclient.State.String(), or "NotSpawned"
}

// Dispatcher is the Server Registry & Dispatcher component: it owns
// one clientEntry per configured spec and routes paths to them.
type Dispatcher struct {
	cfg     Config
	factory ClientFactory
	log     zerolog.Logger

	mu      sync.RWMutex
	entries []*clientEntry // parallel to cfg.Specs
}

// New builds a Dispatcher.
func New(cfg Config, factory ClientFactory, log zerolog.Logger) *Dispatcher {
	entries := make([]*clientEntry, len(cfg.Specs))
	for i, spec := range cfg.Specs {
		entries[i] = &clientEntry{spec: spec}
	}
	return &Dispatcher{cfg: cfg, factory: factory, log: log, entries: entries}
}

// Dispatch resolves path to a Ready client, spawning and initializing
// one if needed.
func (d *Dispatcher) Dispatch(ctx context.Context, path string) (*lspclient.Client, ServerSpec, error) {
	canon, err := d.canonicalize(path)
	if err != nil {
		return nil, ServerSpec{}, err
	}

	langID := d.languageFor(canon)
	if langID == "" {
		return nil, ServerSpec{}, errs.New(errs.NoServerForFile, "no language server configured for %s", path)
	}

	candidates := d.candidateIndices(langID)
	if len(candidates) == 0 {
		return nil, ServerSpec{}, errs.New(errs.NoServerForFile, "no language server configured for language %q", langID)
	}

	// Pass 1: reuse an already-Ready client without evaluating heuristics.
	for _, idx := range candidates {
		entry := d.entries[idx]
		entry.mu.Lock()
		if entry.client != nil && entry.client.State() == lspclient.StateReady {
			c := entry.client
			entry.mu.Unlock()
			return c, entry.spec, nil
		}
		entry.mu.Unlock()
	}

	// Pass 2: evaluate heuristics and spawn the first spec that passes.
	var lastErr error
	for _, idx := range candidates {
		entry := d.entries[idx]
		if !d.heuristicsPass(entry.spec, canon) {
			lastErr = errs.New(errs.HeuristicsReject, "project markers for %s not found above %s", entry.spec.LanguageID, canon)
			continue
		}
		client, err := d.getOrSpawn(ctx, entry)
		if err != nil {
			lastErr = err
			continue
		}
		return client, entry.spec, nil
	}

	if lastErr == nil {
		lastErr = errs.New(errs.NoServerForFile, "no spec for language %q passed heuristics", langID)
	}
	return nil, ServerSpec{}, lastErr
}

// getOrSpawn coalesces concurrent spawn attempts for the same entry:
// the first caller performs initialize while later callers wait on
// the same completion signal.
func (d *Dispatcher) getOrSpawn(ctx context.Context, entry *clientEntry) (*lspclient.Client, error) {
	entry.mu.Lock()
	if entry.client != nil && entry.client.State() == lspclient.StateReady {
		c := entry.client
		entry.mu.Unlock()
		return c, nil
	}
	// A spec whose spawn/initialize failed stays disabled.
	if entry.err != nil {
		err := entry.err
		entry.mu.Unlock()
		return nil, err
	}
	if entry.done != nil {
		done := entry.done
		entry.mu.Unlock()
		<-done
		entry.mu.Lock()
		c, err := entry.client, entry.err
		entry.mu.Unlock()
		return c, err
	}

	done := make(chan struct{})
	entry.done = done
	entry.mu.Unlock()

	rootURI := protocol.DocumentURI("file://" + d.cfg.WorkspaceRoots[0])
	client, err := d.factory(ctx, entry.spec, rootURI)

	entry.mu.Lock()
	entry.client = client
	if err != nil {
		entry.err = errs.Wrap(errs.InitFailed, err, "spawn/initialize %s", entry.spec.LanguageID)
	} else {
		entry.err = nil
	}
	result, resultErr := entry.client, entry.err
	entry.done = nil
	entry.mu.Unlock()
	close(done)

	return result, resultErr
}

// canonicalize resolves path to an absolute, symlink-free form and
// rejects it unless it lies under a configured workspace root.
func (d *Dispatcher) canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.PathEscape, err, "resolve %s", path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = abs
		} else {
			return "", errs.Wrap(errs.PathEscape, err, "resolve symlinks for %s", path)
		}
	}

	for _, root := range d.cfg.WorkspaceRoots {
		rel, err := filepath.Rel(root, resolved)
		if err != nil {
			continue
		}
		if rel == "." || !strings.HasPrefix(rel, "..") {
			return resolved, nil
		}
	}
	return "", errs.New(errs.PathEscape, "%s is not under any configured workspace root", path)
}

// languageFor determines the language id: the extension map wins;
// otherwise the first spec whose file_patterns glob-matches path.
func (d *Dispatcher) languageFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := d.cfg.LanguageExtensions[ext]; ok {
		return lang
	}

	slashPath := filepath.ToSlash(path)
	for _, entry := range d.entries {
		for _, pattern := range entry.spec.FilePatterns {
			if matched, _ := doublestar.Match(pattern, slashPath); matched {
				return entry.spec.LanguageID
			}
		}
	}
	return ""
}

func (d *Dispatcher) candidateIndices(langID string) []int {
	var out []int
	for i, entry := range d.entries {
		if entry.spec.LanguageID == langID {
			out = append(out, i)
		}
	}
	return out
}

// heuristicsPass walks upward from path's directory up to
// HeuristicsMaxDepth levels, passing if any project marker exists
// anywhere on that walk. A marker may be a literal file name or a glob
// pattern such as "*.sln". A spec with no configured markers always
// passes.
func (d *Dispatcher) heuristicsPass(spec ServerSpec, path string) bool {
	if len(spec.ProjectMarkers) == 0 {
		return true
	}

	dir := filepath.Dir(path)
	maxDepth := d.cfg.HeuristicsMaxDepth
	if maxDepth <= 0 {
		maxDepth = 1
	}

	for depth := 0; depth <= maxDepth; depth++ {
		for _, marker := range spec.ProjectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return true
			}
			if matches, _ := doublestar.Glob(os.DirFS(dir), marker); len(matches) > 0 {
				return true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return false
}

// Status returns a snapshot of every configured spec and its client's
// lifecycle state, for the get_server_status tool.
func (d *Dispatcher) Status() []SpecStatus {
	out := make([]SpecStatus, len(d.entries))
	for i, entry := range d.entries {
		entry.mu.Lock()
		state := "NotSpawned"
		if entry.client != nil {
			state = entry.client.State().String()
		}
		out[i] = SpecStatus{LanguageID: entry.spec.LanguageID, Command: entry.spec.Command, State: state}
		entry.mu.Unlock()
	}
	return out
}

// Clients returns the spawned client for each configured spec, in the
// same order as Status, or nil where nothing has been spawned yet.
func (d *Dispatcher) Clients() []*lspclient.Client {
	out := make([]*lspclient.Client, len(d.entries))
	for i, entry := range d.entries {
		entry.mu.Lock()
		out[i] = entry.client
		entry.mu.Unlock()
	}
	return out
}

// Shutdown gracefully shuts down every spawned client.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	for _, entry := range d.entries {
		entry.mu.Lock()
		client := entry.client
		entry.mu.Unlock()
		if client == nil {
			continue
		}
		if err := client.Shutdown(ctx); err != nil {
			d.log.Warn().Err(err).Str("language", entry.spec.LanguageID).Msg("error shutting down lsp client")
		}
	}
}
