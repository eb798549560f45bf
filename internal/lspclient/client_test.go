package lspclient

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
	"github.com/mcpls/mcpls/internal/transport"
)

// fakeFramer is an in-memory transport.Framer standing in for a real
// LSP child process: Write delivers onto toServer, Read pulls from
// toClient, and closing toClient simulates EOF.
type fakeFramer struct {
	toServer  chan *protocol.Message
	toClient  chan *protocol.Message
	closeOnce chan struct{}
}

func newFakeFramer() *fakeFramer {
	return &fakeFramer{
		toServer: make(chan *protocol.Message, 16),
		toClient: make(chan *protocol.Message, 16),
	}
}

func (f *fakeFramer) Read() (*protocol.Message, error) {
	msg, ok := <-f.toClient
	if !ok {
		return nil, transport.ErrServerTerminated
	}
	return msg, nil
}

func (f *fakeFramer) Write(msg *protocol.Message) error {
	f.toServer <- msg
	return nil
}

func (f *fakeFramer) Close() error { return nil }

var _ transport.Framer = (*fakeFramer)(nil)

func newTestClient(t *testing.T, timeout time.Duration) (*Client, *fakeFramer, chan *protocol.Message) {
	t.Helper()
	framer := newFakeFramer()
	notifyCh := make(chan *protocol.Message, 4)
	c := newWithFramer(framer, notifyCh, timeout, zerolog.Nop())
	return c, framer, notifyCh
}

func id64(v int64) *int64 { return &v }

func TestClient_Initialize_RecordsCapabilitiesAndEncoding(t *testing.T) {
	c, framer, _ := newTestClient(t, time.Second)

	go func() {
		req := <-framer.toServer
		require.Equal(t, "initialize", req.Method)
		result := protocol.InitializeResult{Capabilities: protocol.ServerCapabilities{PositionEncoding: protocol.EncodingUTF16}}
		raw, _ := json.Marshal(result)
		framer.toClient <- &protocol.Message{JSONRPC: "2.0", ID: req.ID, Result: raw}
		<-framer.toServer // initialized notification
	}()

	caps, err := c.Initialize(context.Background(), InitializeOptions{RootURI: "file:///ws"})
	require.NoError(t, err)
	assert.Equal(t, protocol.EncodingUTF16, caps.PositionEncoding)
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, protocol.EncodingUTF16, c.PositionEncoding())
}

func TestClient_Initialize_DefaultsEncodingToUTF16(t *testing.T) {
	c, framer, _ := newTestClient(t, time.Second)

	go func() {
		req := <-framer.toServer
		raw, _ := json.Marshal(protocol.InitializeResult{})
		framer.toClient <- &protocol.Message{JSONRPC: "2.0", ID: req.ID, Result: raw}
		<-framer.toServer
	}()

	_, err := c.Initialize(context.Background(), InitializeOptions{RootURI: "file:///ws"})
	require.NoError(t, err)
	assert.Equal(t, protocol.EncodingUTF16, c.PositionEncoding())
}

func TestClient_Request_TimesOutAndClearsPending(t *testing.T) {
	c, _, _ := newTestClient(t, 30*time.Millisecond)

	err := c.Request(context.Background(), "textDocument/definition", struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Timeout))
	assert.Equal(t, 0, c.PendingCount())
}

func TestClient_Request_SucceedsAfterReply(t *testing.T) {
	c, framer, _ := newTestClient(t, time.Second)

	go func() {
		req := <-framer.toServer
		framer.toClient <- &protocol.Message{JSONRPC: "2.0", ID: req.ID, Result: []byte(`{"contents":{"kind":"markdown","value":"hi"}}`)}
	}()

	var hover protocol.Hover
	err := c.Request(context.Background(), "textDocument/hover", struct{}{}, &hover)
	require.NoError(t, err)
	assert.Equal(t, "hi", hover.Contents.Value)
	assert.Equal(t, 0, c.PendingCount())
}

func TestClient_Request_LSPErrorPassesThrough(t *testing.T) {
	c, framer, _ := newTestClient(t, time.Second)

	go func() {
		req := <-framer.toServer
		framer.toClient <- &protocol.Message{JSONRPC: "2.0", ID: req.ID, Error: &protocol.ResponseError{Code: -32602, Message: "bad params"}}
	}()

	err := c.Request(context.Background(), "textDocument/hover", struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.LspError))
}

func TestClient_NotificationIsForwardedToSink(t *testing.T) {
	c, framer, notifyCh := newTestClient(t, time.Second)
	_ = c

	framer.toClient <- &protocol.Message{JSONRPC: "2.0", Method: "textDocument/publishDiagnostics", Params: []byte(`{"uri":"file:///a.go"}`)}

	select {
	case msg := <-notifyCh:
		assert.Equal(t, "textDocument/publishDiagnostics", msg.Method)
	case <-time.After(time.Second):
		t.Fatal("notification was not forwarded")
	}
}

func TestClient_ServerToClientRequest_AnsweredMethodNotFound(t *testing.T) {
	c, framer, _ := newTestClient(t, time.Second)
	_ = c

	framer.toClient <- &protocol.Message{JSONRPC: "2.0", ID: id64(7), Method: "workspace/configuration"}

	select {
	case reply := <-framer.toServer:
		require.NotNil(t, reply.Error)
		assert.Equal(t, protocol.ErrCodeMethodNotFound, reply.Error.Code)
		assert.Equal(t, int64(7), *reply.ID)
	case <-time.After(time.Second):
		t.Fatal("server request was not answered")
	}
}

func TestClient_EOFTerminatesAndFailsPendingRequests(t *testing.T) {
	c, framer, _ := newTestClient(t, 5*time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Request(context.Background(), "textDocument/definition", struct{}{}, nil)
	}()

	// Give the request time to register before closing the stream.
	time.Sleep(20 * time.Millisecond)
	close(framer.toClient)

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ServerTerminated))
	case <-time.After(time.Second):
		t.Fatal("request did not fail after EOF")
	}
	assert.Equal(t, StateTerminated, c.State())
}
