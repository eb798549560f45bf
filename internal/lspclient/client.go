// Package lspclient owns one LSP child process, multiplexes outgoing
// requests by id, and forwards server-initiated notifications onto a
// sink channel for the notification cache to consume.
package lspclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
	"github.com/mcpls/mcpls/internal/transport"
)

// State is the lifecycle state of an LSP client.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitializing:
		return "Initializing"
	case StateReady:
		return "Ready"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

type pendingRequest struct {
	done chan pendingResult
}

type pendingResult struct {
	result json.RawMessage
	err    error
}

// Client manages one LSP server child process over a framed transport.
type Client struct {
	cmd    *exec.Cmd
	framer transport.Framer
	log    zerolog.Logger

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]*pendingRequest
	state   State

	capabilities     protocol.ServerCapabilities
	positionEncoding protocol.PositionEncodingKind

	notifyCh  chan<- *protocol.Message
	dropCount atomic.Int64

	timeout time.Duration

	readDone chan struct{}
}

// Options configures process spawn for a new Client.
type Options struct {
	Command  string
	Args     []string
	Env      []string
	Timeout  time.Duration
	NotifyCh chan<- *protocol.Message
	Logger   zerolog.Logger
}

// New spawns the child process and starts the background read loop.
// The process is intentionally not tied to a context: it must outlive
// any single request and is only torn down by Shutdown or Kill.
func New(opts Options) (*Client, error) {
	cmd := exec.Command(opts.Command, opts.Args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lspclient: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lspclient: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("lspclient: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lspclient: start %s: %w", opts.Command, err)
	}

	c := &Client{
		cmd:      cmd,
		framer:   transport.NewStdio(stdout, stdin, stdin),
		log:      opts.Logger,
		pending:  make(map[int64]*pendingRequest),
		state:    StateUninitialized,
		notifyCh: opts.NotifyCh,
		timeout:  opts.Timeout,
		readDone: make(chan struct{}),
	}

	go c.drainStderr(stderr)
	go c.readLoop()

	return c, nil
}

// newWithFramer builds a Client around an already-constructed framer,
// skipping process spawn. Used by tests to drive the client against an
// in-memory transport.
func newWithFramer(framer transport.Framer, notifyCh chan<- *protocol.Message, timeout time.Duration, logger zerolog.Logger) *Client {
	c := &Client{
		framer:   framer,
		log:      logger,
		pending:  make(map[int64]*pendingRequest),
		state:    StateUninitialized,
		notifyCh: notifyCh,
		timeout:  timeout,
		readDone: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) drainStderr(r interface{ Read([]byte) (int, error) }) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.log.Debug().Str("stream", "stderr").Bytes("data", buf[:n]).Msg("lsp server stderr")
		}
		if err != nil {
			return
		}
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// PositionEncoding returns the negotiated encoding (valid once Ready).
func (c *Client) PositionEncoding() protocol.PositionEncodingKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionEncoding
}

// Capabilities returns the server capabilities recorded at initialize.
func (c *Client) Capabilities() protocol.ServerCapabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capabilities
}

// PendingCount reports the number of in-flight requests; used in tests
// to verify the pending map is fully drained after timeout/terminate.
func (c *Client) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Request sends a JSON-RPC request and blocks for the reply, honoring
// the client's configured timeout. result, if non-nil, receives the
// unmarshaled response payload.
func (c *Client) Request(ctx context.Context, method string, params any, result any) error {
	c.mu.Lock()
	if c.state == StateTerminated {
		c.mu.Unlock()
		return errs.New(errs.ServerTerminated, "client terminated before request %s", method)
	}
	id := c.nextID.Add(1)
	pr := &pendingRequest{done: make(chan pendingResult, 1)}
	c.pending[id] = pr
	c.mu.Unlock()

	msg, err := protocol.NewRequest(id, method, params)
	if err != nil {
		c.removePending(id)
		return errs.Wrap(errs.Internal, err, "marshal request %s", method)
	}

	if err := c.framer.Write(msg); err != nil {
		c.removePending(id)
		return errs.Wrap(errs.ServerTerminated, err, "write request %s", method)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case res := <-pr.done:
		if res.err != nil {
			return res.err
		}
		if result != nil && len(res.result) > 0 && string(res.result) != "null" {
			if err := json.Unmarshal(res.result, result); err != nil {
				return errs.Wrap(errs.Internal, err, "unmarshal result of %s", method)
			}
		}
		return nil
	case <-timeoutCtx.Done():
		c.removePending(id)
		return errs.New(errs.Timeout, "request %s timed out after %s", method, c.timeout)
	}
}

func (c *Client) removePending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Notify sends a fire-and-forget JSON-RPC notification.
func (c *Client) Notify(method string, params any) error {
	msg, err := protocol.NewNotification(method, params)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "marshal notification %s", method)
	}
	if err := c.framer.Write(msg); err != nil {
		return errs.Wrap(errs.ServerTerminated, err, "write notification %s", method)
	}
	return nil
}

// readLoop is the single background reader for this client's transport.
func (c *Client) readLoop() {
	defer close(c.readDone)
	for {
		msg, err := c.framer.Read()
		if err != nil {
			if errors.Is(err, transport.ErrServerTerminated) {
				c.log.Warn().Msg("lsp server terminated connection")
				c.terminate(errs.New(errs.ServerTerminated, "server closed connection"))
				return
			}
			c.log.Warn().Err(err).Msg("dropping malformed lsp frame")
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg *protocol.Message) {
	switch {
	case msg.ID != nil && (msg.Result != nil || msg.Error != nil):
		c.completeRequest(msg)
	case msg.ID == nil && msg.Method != "":
		c.forwardNotification(msg)
	case msg.ID != nil && msg.Method != "":
		c.rejectServerRequest(msg)
	default:
		c.log.Warn().Msg("lsp frame matched no known shape")
	}
}

func (c *Client) completeRequest(msg *protocol.Message) {
	c.mu.Lock()
	pr, ok := c.pending[*msg.ID]
	if ok {
		delete(c.pending, *msg.ID)
	}
	c.mu.Unlock()

	if !ok {
		c.log.Warn().Int64("id", *msg.ID).Msg("response for unknown request id")
		return
	}

	if msg.Error != nil {
		pr.done <- pendingResult{err: errs.FromLSP(msg.Error.Code, msg.Error.Message)}
		return
	}
	pr.done <- pendingResult{result: msg.Result}
}

func (c *Client) forwardNotification(msg *protocol.Message) {
	if c.notifyCh == nil {
		return
	}
	select {
	case c.notifyCh <- msg:
	default:
		c.dropCount.Add(1)
		c.log.Warn().Str("method", msg.Method).Msg("notification sink full, dropping")
	}
}

func (c *Client) rejectServerRequest(msg *protocol.Message) {
	reply := &protocol.Message{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error: &protocol.ResponseError{
			Code:    protocol.ErrCodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", msg.Method),
		},
	}
	if err := c.framer.Write(reply); err != nil {
		c.log.Warn().Err(err).Msg("failed to answer server-to-client request")
	}
}

// terminate fails every pending request with cause and moves the
// client to the Terminated state.
func (c *Client) terminate(cause error) {
	c.mu.Lock()
	c.state = StateTerminated
	pending := c.pending
	c.pending = make(map[int64]*pendingRequest)
	c.mu.Unlock()

	for _, pr := range pending {
		pr.done <- pendingResult{err: cause}
	}
}

// DroppedNotifications returns the count of notifications dropped
// because the sink channel was full.
func (c *Client) DroppedNotifications() int64 {
	return c.dropCount.Load()
}

// Kill forcibly terminates the child process.
func (c *Client) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Kill()
}

// Wait blocks until the child process exits.
func (c *Client) Wait() error {
	return c.cmd.Wait()
}
