// Package notifcache holds the bounded, non-blocking views over
// server-initiated LSP notifications the bridge exposes back to MCP
// tools: per-URI diagnostics and the log/show message ring buffers.
package notifcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/mcpls/mcpls/internal/protocol"
)

const (
	// DefaultDiagnosticsCap bounds the number of distinct URIs tracked
	// for diagnostics before the least-recently-updated entry is evicted.
	DefaultDiagnosticsCap = 1000
	// DefaultLogCap bounds the window/logMessage ring buffer.
	DefaultLogCap = 500
	// DefaultMessageCap bounds the window/showMessage ring buffer.
	DefaultMessageCap = 100
)

// DiagnosticsEntry is a snapshot of one URI's most recent diagnostics.
type DiagnosticsEntry struct {
	URI         protocol.DocumentURI
	Diagnostics []protocol.Diagnostic
	UpdatedAt   time.Time
}

// LogEntry is one window/logMessage notification.
type LogEntry struct {
	Type      protocol.MessageType
	Message   string
	Timestamp time.Time
}

// MessageEntry is one window/showMessage notification.
type MessageEntry struct {
	Type      protocol.MessageType
	Message   string
	Timestamp time.Time
}

// clock lets tests substitute a deterministic time source.
type clock func() time.Time

// Cache is the notification cache for a single LSP client. All methods
// are safe for concurrent use; reads never block behind a writer for
// longer than a map/list mutation.
type Cache struct {
	now clock

	diagMu    sync.Mutex
	diagCap   int
	diagIndex map[protocol.DocumentURI]*list.Element // value: *DiagnosticsEntry, ordered LRU
	diagOrder *list.List

	logMu  sync.Mutex
	logCap int
	logs   []LogEntry // ring buffer, oldest first

	msgMu  sync.Mutex
	msgCap int
	msgs   []MessageEntry
}

// Options configures cache capacities; zero values fall back to the
// package defaults.
type Options struct {
	DiagnosticsCap int
	LogCap         int
	MessageCap     int
}

// New builds an empty cache.
func New(opts Options) *Cache {
	return newWithClock(opts, time.Now)
}

func newWithClock(opts Options, now clock) *Cache {
	diagCap := opts.DiagnosticsCap
	if diagCap <= 0 {
		diagCap = DefaultDiagnosticsCap
	}
	logCap := opts.LogCap
	if logCap <= 0 {
		logCap = DefaultLogCap
	}
	msgCap := opts.MessageCap
	if msgCap <= 0 {
		msgCap = DefaultMessageCap
	}
	return &Cache{
		now:       now,
		diagCap:   diagCap,
		diagIndex: make(map[protocol.DocumentURI]*list.Element),
		diagOrder: list.New(),
		logCap:    logCap,
		msgCap:    msgCap,
	}
}

// PublishDiagnostics records (or replaces) the diagnostics for a URI,
// evicting the least-recently-updated entry if this insertion would
// exceed the configured cap.
func (c *Cache) PublishDiagnostics(params protocol.PublishDiagnosticsParams) {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()

	entry := &DiagnosticsEntry{
		URI:         params.URI,
		Diagnostics: append([]protocol.Diagnostic(nil), params.Diagnostics...),
		UpdatedAt:   c.now(),
	}

	if el, ok := c.diagIndex[params.URI]; ok {
		el.Value = entry
		c.diagOrder.MoveToBack(el)
		return
	}

	if c.diagOrder.Len() >= c.diagCap {
		oldest := c.diagOrder.Front()
		if oldest != nil {
			c.diagOrder.Remove(oldest)
			delete(c.diagIndex, oldest.Value.(*DiagnosticsEntry).URI)
		}
	}

	el := c.diagOrder.PushBack(entry)
	c.diagIndex[params.URI] = el
}

// PurgeDiagnostics removes the cached entry for uri, called when the
// document tracker closes a document.
func (c *Cache) PurgeDiagnostics(uri protocol.DocumentURI) {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	if el, ok := c.diagIndex[uri]; ok {
		c.diagOrder.Remove(el)
		delete(c.diagIndex, uri)
	}
}

// Diagnostics returns a snapshot of the cached diagnostics for uri.
// The second return is false if nothing is cached for that URI.
func (c *Cache) Diagnostics(uri protocol.DocumentURI) ([]protocol.Diagnostic, bool) {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	el, ok := c.diagIndex[uri]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*DiagnosticsEntry)
	return append([]protocol.Diagnostic(nil), entry.Diagnostics...), true
}

// DiagnosticsCount reports how many URIs currently have cached entries.
func (c *Cache) DiagnosticsCount() int {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return c.diagOrder.Len()
}

// LogMessage appends a window/logMessage notification, dropping the
// oldest entry if the ring buffer is full.
func (c *Cache) LogMessage(params protocol.LogMessageParams) {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	c.logs = append(c.logs, LogEntry{Type: params.Type, Message: params.Message, Timestamp: c.now()})
	if len(c.logs) > c.logCap {
		c.logs = c.logs[len(c.logs)-c.logCap:]
	}
}

// Logs returns up to limit most-recent log entries (newest last),
// optionally filtered to min severity or better (lower MessageType
// value is more severe, matching LSP's MessageType ordering).
func (c *Cache) Logs(limit int, minLevel protocol.MessageType) []LogEntry {
	c.logMu.Lock()
	defer c.logMu.Unlock()

	filtered := make([]LogEntry, 0, len(c.logs))
	for _, e := range c.logs {
		if minLevel != 0 && e.Type > minLevel {
			continue
		}
		filtered = append(filtered, e)
	}
	return tailLog(filtered, limit)
}

func tailLog(entries []LogEntry, limit int) []LogEntry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[len(entries)-limit:]
}

// ShowMessage appends a window/showMessage notification, dropping the
// oldest entry if the ring buffer is full.
func (c *Cache) ShowMessage(params protocol.ShowMessageParams) {
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	c.msgs = append(c.msgs, MessageEntry{Type: params.Type, Message: params.Message, Timestamp: c.now()})
	if len(c.msgs) > c.msgCap {
		c.msgs = c.msgs[len(c.msgs)-c.msgCap:]
	}
}

// Messages returns up to limit most-recent show-message entries
// (newest last).
func (c *Cache) Messages(limit int) []MessageEntry {
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	if limit <= 0 || limit >= len(c.msgs) {
		out := make([]MessageEntry, len(c.msgs))
		copy(out, c.msgs)
		return out
	}
	out := make([]MessageEntry, limit)
	copy(out, c.msgs[len(c.msgs)-limit:])
	return out
}
