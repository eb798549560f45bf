// Package transport implements the framed JSON-RPC transport LSP
// servers speak over stdio: "Content-Length: N\r\n\r\n" followed by N
// bytes of UTF-8 JSON.
package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/mcpls/mcpls/internal/protocol"
)

// ErrServerTerminated is returned by Read once the underlying stream
// has reached EOF. Callers must stop reading after receiving it rather
// than looping on a read error.
var ErrServerTerminated = errors.New("transport: server terminated")

// Framer reads and writes single LSP-framed messages. It is the
// capability set {read frame, write frame} that the LSP client is
// polymorphic over; a second implementation (e.g. TCP) only needs to
// satisfy this interface to be usable without recompiling the client.
type Framer interface {
	Read() (*protocol.Message, error)
	Write(msg *protocol.Message) error
	Close() error
}

// Stdio frames messages over a child process's stdin/stdout pipes.
type Stdio struct {
	r      *bufio.Reader
	w      io.Writer
	closer io.Closer

	writeMu sync.Mutex
}

// NewStdio wraps the given reader and writer in the LSP frame format.
// closer, if non-nil, is invoked by Close in addition to nothing else —
// the caller remains responsible for terminating the child process.
func NewStdio(r io.Reader, w io.Writer, closer io.Closer) *Stdio {
	return &Stdio{r: bufio.NewReader(r), w: w, closer: closer}
}

// Read blocks until a full frame is available, parses its headers and
// body, and returns the decoded message. A malformed header line is a
// recoverable error: the caller should log it and keep reading. EOF
// returns ErrServerTerminated, which is not recoverable.
func (s *Stdio) Read() (*protocol.Message, error) {
	contentLength := -1
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrServerTerminated
			}
			return nil, fmt.Errorf("transport: read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("transport: malformed header %q", line)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		switch strings.ToLower(name) {
		case "content-length":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("transport: bad Content-Length %q: %w", value, err)
			}
			contentLength = n
		default:
			// Content-Type and anything else is ignored per spec.
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("transport: missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrServerTerminated
		}
		return nil, fmt.Errorf("transport: read body: %w", err)
	}

	var msg protocol.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("transport: decode body: %w", err)
	}
	return &msg, nil
}

// Write serializes msg and writes the full frame (headers, then body)
// while holding a write mutex, so concurrent writers never interleave
// headers from one frame with the body of another.
func (s *Stdio) Write(msg *protocol.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transport: encode body: %w", err)
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(body))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := io.WriteString(s.w, buf.String()); err != nil {
		return fmt.Errorf("transport: write header: %w", err)
	}
	if _, err := s.w.Write(body); err != nil {
		return fmt.Errorf("transport: write body: %w", err)
	}
	return nil
}

// Close releases the underlying stream, if closable.
func (s *Stdio) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

var _ Framer = (*Stdio)(nil)
