// Package mcpserver wires the bridge's Tool Core onto an MCP runtime:
// one mcp_golang.RegisterTool call per tool, each marshaling the
// bridge's typed result back to the JSON text content the MCP wire
// format expects.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/bridge"
)

// Server owns the mcp_golang server and the bridge it dispatches to.
type Server struct {
	mcp    *mcp_golang.Server
	bridge *bridge.Bridge
	log    zerolog.Logger
}

// New builds a Server reading/writing MCP frames over stdio.
func New(b *bridge.Bridge, log zerolog.Logger) *Server {
	return &Server{
		mcp:    mcp_golang.NewServer(stdio.NewStdioServerTransport()),
		bridge: b,
		log:    log,
	}
}

// Serve registers every tool and blocks serving requests until the
// transport closes.
func (s *Server) Serve() error {
	if err := s.registerTools(); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	return s.mcp.Serve()
}

// toJSONResponse marshals a bridge result to a ToolResponse carrying
// its JSON encoding as text content, matching how this MCP fork
// returns structured data (callers parse the JSON text themselves).
func toJSONResponse(v any) (*mcp_golang.ToolResponse, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(string(raw))), nil
}

type toolDef struct {
	name        string
	description string
	register    func(*mcp_golang.Server) error
}

func registerTyped[A any, R any](s *mcp_golang.Server, name, description string, handle func(context.Context, A) (*R, error)) error {
	return s.RegisterTool(name, description, func(args A) (*mcp_golang.ToolResponse, error) {
		result, err := handle(context.Background(), args)
		if err != nil {
			return nil, err
		}
		return toJSONResponse(result)
	})
}

func (s *Server) registerTools() error {
	b := s.bridge

	tools := []toolDef{
		{"get_hover", "Get hover information (type signature, documentation) for the symbol at a position.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_hover", "Get hover information (type signature, documentation) for the symbol at a position.", b.HandleHover)
		}},
		{"get_definition", "Get the definition location(s) of the symbol at a position.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_definition", "Get the definition location(s) of the symbol at a position.", b.HandleDefinition)
		}},
		{"get_references", "Find all references to the symbol at a position.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_references", "Find all references to the symbol at a position.", b.HandleReferences)
		}},
		{"get_diagnostics", "Get current diagnostics for a file, opening it with its language server if needed.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_diagnostics", "Get current diagnostics for a file, opening it with its language server if needed.", b.HandleDiagnostics)
		}},
		{"get_cached_diagnostics", "Read the most recently cached diagnostics for a file without opening it.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_cached_diagnostics", "Read the most recently cached diagnostics for a file without opening it.", b.HandleCachedDiagnostics)
		}},
		{"rename_symbol", "Compute a workspace edit that renames the symbol at a position. Not applied to disk.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "rename_symbol", "Compute a workspace edit that renames the symbol at a position. Not applied to disk.", b.HandleRenameSymbol)
		}},
		{"get_completions", "Get completion suggestions at a position.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_completions", "Get completion suggestions at a position.", b.HandleCompletions)
		}},
		{"get_document_symbols", "List the symbols defined in a document.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_document_symbols", "List the symbols defined in a document.", b.HandleDocumentSymbols)
		}},
		{"format_document", "Format a document and return the edits (not applied to disk).", func(m *mcp_golang.Server) error {
			return registerTyped(m, "format_document", "Format a document and return the edits (not applied to disk).", b.HandleFormatDocument)
		}},
		{"workspace_symbol_search", "Search for symbols by name across the workspace.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "workspace_symbol_search", "Search for symbols by name across the workspace.", b.HandleWorkspaceSymbolSearch)
		}},
		{"get_code_actions", "Get available code actions (quick fixes, refactors) for a range.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_code_actions", "Get available code actions (quick fixes, refactors) for a range.", b.HandleCodeActions)
		}},
		{"prepare_call_hierarchy", "Prepare a call hierarchy item at a position, for use with get_incoming_calls/get_outgoing_calls.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "prepare_call_hierarchy", "Prepare a call hierarchy item at a position, for use with get_incoming_calls/get_outgoing_calls.", b.HandlePrepareCallHierarchy)
		}},
		{"get_incoming_calls", "Get incoming calls for a call hierarchy item returned by prepare_call_hierarchy.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_incoming_calls", "Get incoming calls for a call hierarchy item returned by prepare_call_hierarchy.", b.HandleIncomingCalls)
		}},
		{"get_outgoing_calls", "Get outgoing calls for a call hierarchy item returned by prepare_call_hierarchy.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_outgoing_calls", "Get outgoing calls for a call hierarchy item returned by prepare_call_hierarchy.", b.HandleOutgoingCalls)
		}},
		{"get_server_logs", "Read recent log messages pushed by a file's language server.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_server_logs", "Read recent log messages pushed by a file's language server.", b.HandleServerLogs)
		}},
		{"get_server_messages", "Read recent user-facing messages pushed by a file's language server.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_server_messages", "Read recent user-facing messages pushed by a file's language server.", b.HandleServerMessages)
		}},
		{"get_server_status", "Get a snapshot of every configured language server's lifecycle state and open document count.", func(m *mcp_golang.Server) error {
			return registerTyped(m, "get_server_status", "Get a snapshot of every configured language server's lifecycle state and open document count.", b.HandleServerStatus)
		}},
	}

	for _, t := range tools {
		if err := t.register(s.mcp); err != nil {
			return fmt.Errorf("register tool %s: %w", t.name, err)
		}
	}
	return nil
}
