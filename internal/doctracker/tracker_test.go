package doctracker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

type fakeNotifier struct {
	opens   []protocol.DidOpenTextDocumentParams
	changes []protocol.DidChangeTextDocumentParams
	closes  []protocol.DidCloseTextDocumentParams
	failOpen bool
}

func (f *fakeNotifier) DidOpen(p protocol.DidOpenTextDocumentParams) error {
	if f.failOpen {
		return errs.New(errs.Internal, "boom")
	}
	f.opens = append(f.opens, p)
	return nil
}

func (f *fakeNotifier) DidChange(p protocol.DidChangeTextDocumentParams) error {
	f.changes = append(f.changes, p)
	return nil
}

func (f *fakeNotifier) DidClose(p protocol.DidCloseTextDocumentParams) error {
	f.closes = append(f.closes, p)
	return nil
}

type fakePurger struct {
	purged []protocol.DocumentURI
}

func (f *fakePurger) PurgeDiagnostics(uri protocol.DocumentURI) {
	f.purged = append(f.purged, uri)
}

func toURI(path string) (protocol.DocumentURI, error) {
	return protocol.DocumentURI("file://" + path), nil
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileTracker_EnsureOpen_OpensOnFirstCallOnly(t *testing.T) {
	path := writeTemp(t, "package main\n")
	notifier := &fakeNotifier{}
	tracker := New(notifier, &fakePurger{}, toURI)

	doc, err := tracker.EnsureOpen(context.Background(), path, "go")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Len(t, notifier.opens, 1)

	doc2, err := tracker.EnsureOpen(context.Background(), path, "go")
	require.NoError(t, err)
	assert.Same(t, doc, doc2)
	assert.Len(t, notifier.opens, 1, "second ensure_open must not re-send didOpen")
}

func TestFileTracker_EnsureOpen_MissingFileFails(t *testing.T) {
	notifier := &fakeNotifier{}
	tracker := New(notifier, &fakePurger{}, toURI)

	_, err := tracker.EnsureOpen(context.Background(), "/no/such/file.go", "go")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.FileNotFound))
}

func TestFileTracker_EnsureOpen_InvalidUTF8Fails(t *testing.T) {
	path := writeTemp(t, "")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0o644))
	notifier := &fakeNotifier{}
	tracker := New(notifier, &fakePurger{}, toURI)

	_, err := tracker.EnsureOpen(context.Background(), path, "go")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidEncoding))
}

func TestFileTracker_DidChange_IncrementsVersionMonotonically(t *testing.T) {
	path := writeTemp(t, "package main\n")
	notifier := &fakeNotifier{}
	tracker := New(notifier, &fakePurger{}, toURI)

	doc, err := tracker.EnsureOpen(context.Background(), path, "go")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)

	doc, err = tracker.DidChange(context.Background(), path, "package main\n\nfunc f(){}\n")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Version)

	doc, err = tracker.DidChange(context.Background(), path, "package main\n\nfunc g(){}\n")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Version)

	require.Len(t, notifier.changes, 2)
	assert.Equal(t, 2, notifier.changes[0].TextDocument.Version)
	assert.Equal(t, 3, notifier.changes[1].TextDocument.Version)
	assert.Nil(t, notifier.changes[0].ContentChanges[0].Range, "full-document change omits range")
}

func TestFileTracker_DidClose_DropsEntryAndPurgesCache(t *testing.T) {
	path := writeTemp(t, "package main\n")
	notifier := &fakeNotifier{}
	purger := &fakePurger{}
	tracker := New(notifier, purger, toURI)

	doc, err := tracker.EnsureOpen(context.Background(), path, "go")
	require.NoError(t, err)

	require.NoError(t, tracker.DidClose(context.Background(), path))

	_, ok := tracker.Get(path)
	assert.False(t, ok)
	require.Len(t, purger.purged, 1)
	assert.Equal(t, doc.URI, purger.purged[0])
	require.Len(t, notifier.closes, 1)
}

func TestFileTracker_DidClose_OnUntrackedPathIsNoop(t *testing.T) {
	tracker := New(&fakeNotifier{}, &fakePurger{}, toURI)
	assert.NoError(t, tracker.DidClose(context.Background(), "/never/opened.go"))
}

func TestFileTracker_EnsureOpen_RollsBackOnNotifyFailure(t *testing.T) {
	path := writeTemp(t, "package main\n")
	notifier := &fakeNotifier{failOpen: true}
	tracker := New(notifier, &fakePurger{}, toURI)

	_, err := tracker.EnsureOpen(context.Background(), path, "go")
	require.Error(t, err)

	_, ok := tracker.Get(path)
	assert.False(t, ok, "failed open must not leave a dangling tracked entry")
}
