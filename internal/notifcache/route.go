package notifcache

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/protocol"
)

// Route dispatches one notification frame into the cache based on its
// method, ignoring methods the cache has no interest in (e.g.
// $/progress, which the broker accepts but does not yet act on).
func (c *Cache) Route(msg *protocol.Message) error {
	switch msg.Method {
	case "textDocument/publishDiagnostics":
		var params protocol.PublishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		c.PublishDiagnostics(params)
	case "window/logMessage":
		var params protocol.LogMessageParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		c.LogMessage(params)
	case "window/showMessage":
		var params protocol.ShowMessageParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		c.ShowMessage(params)
	}
	return nil
}

// Pump drains notifyCh into the cache until the channel is closed or
// ctx is cancelled. Intended to run as one goroutine per LSP client.
func (c *Cache) Pump(ctx context.Context, notifyCh <-chan *protocol.Message, log zerolog.Logger) {
	for {
		select {
		case msg, ok := <-notifyCh:
			if !ok {
				return
			}
			if err := c.Route(msg); err != nil {
				log.Warn().Str("method", msg.Method).Err(err).Msg("failed to route lsp notification")
			}
		case <-ctx.Done():
			return
		}
	}
}
