package bridge

import (
	"strings"
	"time"

	"github.com/mcpls/mcpls/internal/protocol"
)

// levelName renders an LSP MessageType as the lowercase name the MCP
// surface uses, matching window/logMessage's severity ordering (1 is
// most severe).
func levelName(t protocol.MessageType) string {
	switch t {
	case protocol.MessageError:
		return "error"
	case protocol.MessageWarning:
		return "warning"
	case protocol.MessageInfo:
		return "info"
	case protocol.MessageLog:
		return "log"
	default:
		return "log"
	}
}

// parseMinLevel maps the MCP argument's level name back to the LSP
// MessageType it corresponds to; an empty or unrecognized name means
// no filtering.
func parseMinLevel(name string) protocol.MessageType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return protocol.MessageError
	case "warning", "warn":
		return protocol.MessageWarning
	case "info":
		return protocol.MessageInfo
	case "log":
		return protocol.MessageLog
	default:
		return 0
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
