package lspclient

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/protocol"
	"github.com/mcpls/mcpls/internal/transport"
)

// blockingFramer never produces a frame; it exists only so a
// test-stub Client has a well-formed (if inert) transport.
type blockingFramer struct{ block chan struct{} }

func (f blockingFramer) Read() (*protocol.Message, error) {
	<-f.block
	return nil, nil
}

func (blockingFramer) Write(*protocol.Message) error { return nil }
func (blockingFramer) Close() error                  { return nil }

// NewReadyForTest builds a Client already in the StateReady lifecycle
// state with no backing process, for packages (such as registry) whose
// tests need a stand-in "already spawned and initialized" client
// without driving a real initialize handshake.
func NewReadyForTest() *Client {
	return &Client{
		framer:           blockingFramer{block: make(chan struct{})},
		log:              zerolog.Nop(),
		pending:          make(map[int64]*pendingRequest),
		state:            StateReady,
		positionEncoding: protocol.EncodingUTF16,
		timeout:          time.Second,
		readDone:         make(chan struct{}),
	}
}

// NewWithFramerForTest builds a Client around an already-constructed
// in-memory transport.Framer, for packages outside lspclient whose
// tests need to drive a real Initialize handshake (and subsequent
// requests) without spawning a child process.
func NewWithFramerForTest(framer transport.Framer, notifyCh chan<- *protocol.Message, timeout time.Duration) *Client {
	return newWithFramer(framer, notifyCh, timeout, zerolog.Nop())
}
