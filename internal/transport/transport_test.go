package transport

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpls/mcpls/internal/protocol"
)

// nopCloser is a no-op io.Closer passed as the closer of a Stdio
// transport in tests.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func TestStdio_WriteThenRead_RoundTrips(t *testing.T) {
	var wire bytes.Buffer
	id := int64(1)
	out := NewStdio(&wire, &wire, nopCloser{})

	msg := &protocol.Message{JSONRPC: "2.0", ID: &id, Method: "initialize"}
	require.NoError(t, out.Write(msg))

	got, err := out.Read()
	require.NoError(t, err)
	assert.Equal(t, "initialize", got.Method)
	require.NotNil(t, got.ID)
	assert.Equal(t, int64(1), *got.ID)
}

func TestStdio_Read_EOFBecomesServerTerminated(t *testing.T) {
	r := io.NopCloser(bytes.NewReader(nil))
	s := NewStdio(r, io.Discard, nopCloser{})

	_, err := s.Read()
	assert.ErrorIs(t, err, ErrServerTerminated)
}

func TestStdio_Read_MissingContentLengthIsRecoverableError(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"x"}`)
	frame := "Content-Type: application/json\r\n\r\n" + string(body)
	s := NewStdio(bytes.NewReader([]byte(frame)), io.Discard, nopCloser{})

	_, err := s.Read()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrServerTerminated)
}

func TestStdio_Read_MalformedHeaderIsRecoverableError(t *testing.T) {
	frame := "not-a-header-line\r\n\r\n"
	s := NewStdio(bytes.NewReader([]byte(frame)), io.Discard, nopCloser{})

	_, err := s.Read()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrServerTerminated)
}

func TestStdio_Read_MultipleFramesInSequence(t *testing.T) {
	var wire bytes.Buffer
	s := NewStdio(&wire, &wire, nopCloser{})

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Write(&protocol.Message{JSONRPC: "2.0", Method: "textDocument/didOpen"}))
	}

	for i := 0; i < 3; i++ {
		got, err := s.Read()
		require.NoError(t, err)
		assert.Equal(t, "textDocument/didOpen", got.Method)
	}
}
