// Package doctracker lazily opens files with their LSP client,
// tracking version numbers so textDocument/didChange notifications
// carry monotonically increasing versions.
package doctracker

import (
	"bytes"
	"context"
	"os"
	"sync"

	"golang.org/x/text/encoding/unicode"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

// DocumentState is the tracker's view of one open document.
type DocumentState struct {
	URI     protocol.DocumentURI
	Lang    string
	Version int
	Content string
}

// Notifier is the subset of *lspclient.Client the tracker needs to
// notify of document lifecycle events. Declared locally so the
// tracker does not import lspclient, keeping the dependency direction
// one-way (bridge wires tracker to client, not the reverse).
type Notifier interface {
	DidOpen(params protocol.DidOpenTextDocumentParams) error
	DidChange(params protocol.DidChangeTextDocumentParams) error
	DidClose(params protocol.DidCloseTextDocumentParams) error
}

// DiagnosticsPurger is implemented by the notification cache; the
// tracker tells it to drop a URI's diagnostics on close.
type DiagnosticsPurger interface {
	PurgeDiagnostics(uri protocol.DocumentURI)
}

// Tracker is the interface the bridge depends on, so a future eviction
// policy (e.g. LRU) can replace the default implementation without
// touching call sites.
type Tracker interface {
	EnsureOpen(ctx context.Context, path string, lang string) (*DocumentState, error)
	DidChange(ctx context.Context, path string, newContent string) (*DocumentState, error)
	DidClose(ctx context.Context, path string) error
	Get(path string) (*DocumentState, bool)
	DocCount() int
}

// strictUTF8 decodes document bytes as UTF-8. The decoder substitutes
// U+FFFD for malformed byte sequences rather than failing, so
// EnsureOpen treats any difference between its output and the raw
// bytes as InvalidEncoding.
var strictUTF8 = unicode.UTF8.NewDecoder()

// PathToURI builds the file:// URI spec.md requires, which must
// round-trip back to the canonical absolute path.
type PathToURI func(path string) (protocol.DocumentURI, error)

// FileTracker is the default, non-evicting Tracker: documents stay
// open for the broker's lifetime once opened.
type FileTracker struct {
	notifier Notifier
	purger   DiagnosticsPurger
	toURI    PathToURI

	mu   sync.Mutex
	docs map[string]*DocumentState // keyed by canonical path
}

// New builds a FileTracker bound to one LSP client's notifier, the
// diagnostics cache it purges on close, and a path→URI converter
// (shared with the dispatcher/validator so URIs are computed
// identically everywhere).
func New(notifier Notifier, purger DiagnosticsPurger, toURI PathToURI) *FileTracker {
	return &FileTracker{notifier: notifier, purger: purger, toURI: toURI, docs: make(map[string]*DocumentState)}
}

var _ Tracker = (*FileTracker)(nil)

// EnsureOpen opens path with the LSP client if it is not already
// tracked, reading its bytes, validating UTF-8, and sending didOpen
// with version 1.
func (t *FileTracker) EnsureOpen(ctx context.Context, path string, lang string) (*DocumentState, error) {
	t.mu.Lock()
	if doc, ok := t.docs[path]; ok {
		t.mu.Unlock()
		return doc, nil
	}
	t.mu.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.FileNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.Internal, err, "read %s", path)
	}

	decoded, err := strictUTF8.Bytes(raw)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidEncoding, err, "%s is not valid UTF-8", path)
	}
	if !bytes.Equal(decoded, raw) {
		return nil, errs.New(errs.InvalidEncoding, "%s is not valid UTF-8", path)
	}

	uri, err := t.toURI(path)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "compute uri for %s", path)
	}

	doc := &DocumentState{URI: uri, Lang: lang, Version: 1, Content: string(raw)}

	t.mu.Lock()
	if existing, ok := t.docs[path]; ok {
		t.mu.Unlock()
		return existing, nil
	}
	t.docs[path] = doc
	t.mu.Unlock()

	if err := t.notifier.DidOpen(protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: lang, Version: 1, Text: doc.Content},
	}); err != nil {
		t.mu.Lock()
		delete(t.docs, path)
		t.mu.Unlock()
		return nil, err
	}

	return doc, nil
}

// DidChange increments the document's version and sends a full-content
// didChange notification. The tracker lock is held while the
// notification is sent, so concurrent changes reach the server in
// version order.
func (t *FileTracker) DidChange(ctx context.Context, path string, newContent string) (*DocumentState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	doc, ok := t.docs[path]
	if !ok {
		return nil, errs.New(errs.Internal, "did_change on unopened document %s", path)
	}
	doc.Version++
	doc.Content = newContent
	version := doc.Version
	uri := doc.URI

	if err := t.notifier.DidChange(protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: version},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: newContent}},
	}); err != nil {
		return nil, err
	}

	return doc, nil
}

// DidClose sends didClose, drops the tracked entry, and purges the
// URI's cached diagnostics.
func (t *FileTracker) DidClose(ctx context.Context, path string) error {
	t.mu.Lock()
	doc, ok := t.docs[path]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	delete(t.docs, path)
	t.mu.Unlock()

	err := t.notifier.DidClose(protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
	})
	if t.purger != nil {
		t.purger.PurgeDiagnostics(doc.URI)
	}
	return err
}

// Get returns the tracked state for path without opening it.
func (t *FileTracker) Get(path string) (*DocumentState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	doc, ok := t.docs[path]
	return doc, ok
}

// DocCount reports how many documents are currently open, for the
// server-status tool's per-language document counts.
func (t *FileTracker) DocCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.docs)
}
