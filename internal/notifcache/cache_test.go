package notifcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpls/mcpls/internal/protocol"
)

func TestCache_PublishDiagnostics_ReplacesAndReads(t *testing.T) {
	c := New(Options{})

	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{
		URI:         "file:///a.go",
		Diagnostics: []protocol.Diagnostic{{Message: "first"}},
	})
	diags, ok := c.Diagnostics("file:///a.go")
	require.True(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, "first", diags[0].Message)

	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{
		URI:         "file:///a.go",
		Diagnostics: []protocol.Diagnostic{{Message: "second"}, {Message: "third"}},
	})
	diags, ok = c.Diagnostics("file:///a.go")
	require.True(t, ok)
	require.Len(t, diags, 2)
	assert.Equal(t, "second", diags[0].Message)
}

func TestCache_PurgeDiagnostics_RemovesEntry(t *testing.T) {
	c := New(Options{})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///a.go", Diagnostics: []protocol.Diagnostic{{Message: "x"}}})

	c.PurgeDiagnostics("file:///a.go")

	_, ok := c.Diagnostics("file:///a.go")
	assert.False(t, ok)
}

func TestCache_Diagnostics_UnknownURIReturnsFalse(t *testing.T) {
	c := New(Options{})
	_, ok := c.Diagnostics("file:///never-seen.go")
	assert.False(t, ok)
}

func TestCache_DiagnosticsCap_EvictsLeastRecentlyUpdated(t *testing.T) {
	c := New(Options{DiagnosticsCap: 2})

	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///a.go"})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///b.go"})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///c.go"})

	assert.Equal(t, 2, c.DiagnosticsCount())
	_, ok := c.Diagnostics("file:///a.go")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Diagnostics("file:///b.go")
	assert.True(t, ok)
	_, ok = c.Diagnostics("file:///c.go")
	assert.True(t, ok)
}

func TestCache_DiagnosticsCap_UpdatingExistingURIRefreshesRecency(t *testing.T) {
	c := New(Options{DiagnosticsCap: 2})

	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///a.go"})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///b.go"})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///a.go", Diagnostics: []protocol.Diagnostic{{Message: "refreshed"}}})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///c.go"})

	_, ok := c.Diagnostics("file:///b.go")
	assert.False(t, ok, "b should have been the least-recently-updated entry")
	diags, ok := c.Diagnostics("file:///a.go")
	require.True(t, ok)
	assert.Equal(t, "refreshed", diags[0].Message)
}

func TestCache_LogMessage_RingBufferDropsOldest(t *testing.T) {
	c := New(Options{LogCap: 2})

	c.LogMessage(protocol.LogMessageParams{Message: "one"})
	c.LogMessage(protocol.LogMessageParams{Message: "two"})
	c.LogMessage(protocol.LogMessageParams{Message: "three"})

	logs := c.Logs(0, 0)
	require.Len(t, logs, 2)
	assert.Equal(t, "two", logs[0].Message)
	assert.Equal(t, "three", logs[1].Message)
}

func TestCache_Logs_FiltersByMinLevel(t *testing.T) {
	c := New(Options{})
	c.LogMessage(protocol.LogMessageParams{Type: protocol.MessageLog, Message: "debug-ish"})
	c.LogMessage(protocol.LogMessageParams{Type: protocol.MessageError, Message: "boom"})

	logs := c.Logs(0, protocol.MessageWarning)
	require.Len(t, logs, 1)
	assert.Equal(t, "boom", logs[0].Message)
}

func TestCache_Logs_LimitsToMostRecent(t *testing.T) {
	c := New(Options{})
	for i := 0; i < 5; i++ {
		c.LogMessage(protocol.LogMessageParams{Message: string(rune('a' + i))})
	}
	logs := c.Logs(2, 0)
	require.Len(t, logs, 2)
	assert.Equal(t, "d", logs[0].Message)
	assert.Equal(t, "e", logs[1].Message)
}

func TestCache_ShowMessage_RingBufferDropsOldest(t *testing.T) {
	c := New(Options{MessageCap: 1})
	c.ShowMessage(protocol.ShowMessageParams{Message: "one"})
	c.ShowMessage(protocol.ShowMessageParams{Message: "two"})

	msgs := c.Messages(0)
	require.Len(t, msgs, 1)
	assert.Equal(t, "two", msgs[0].Message)
}

func TestCache_Route_DispatchesByMethod(t *testing.T) {
	c := New(Options{})

	require.NoError(t, c.Route(&protocol.Message{
		Method: "textDocument/publishDiagnostics",
		Params: []byte(`{"uri":"file:///a.go","diagnostics":[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"message":"bad"}]}`),
	}))
	diags, ok := c.Diagnostics("file:///a.go")
	require.True(t, ok)
	assert.Equal(t, "bad", diags[0].Message)

	require.NoError(t, c.Route(&protocol.Message{Method: "window/logMessage", Params: []byte(`{"type":1,"message":"hi"}`)}))
	assert.Len(t, c.Logs(0, 0), 1)

	require.NoError(t, c.Route(&protocol.Message{Method: "window/showMessage", Params: []byte(`{"type":3,"message":"hey"}`)}))
	assert.Len(t, c.Messages(0), 1)

	// Unknown methods (e.g. $/progress) are accepted but ignored.
	require.NoError(t, c.Route(&protocol.Message{Method: "$/progress", Params: []byte(`{}`)}))
}

func TestCache_DiagnosticsSnapshot_TimestampIsMonotonic(t *testing.T) {
	c := New(Options{})
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///a.go"})
	first := c.diagIndex["file:///a.go"].Value.(*DiagnosticsEntry).UpdatedAt
	c.PublishDiagnostics(protocol.PublishDiagnosticsParams{URI: "file:///a.go"})
	second := c.diagIndex["file:///a.go"].Value.(*DiagnosticsEntry).UpdatedAt
	assert.False(t, second.Before(first))
}
