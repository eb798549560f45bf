package lspclient

import (
	"context"
	"os"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

// PreferredEncodings is the order in which the bridge advertises
// position-encoding support; servers pick the first one they support.
var PreferredEncodings = []protocol.PositionEncodingKind{
	protocol.EncodingUTF8, protocol.EncodingUTF16, protocol.EncodingUTF32,
}

// InitializeOptions carries the workspace-specific parameters for the
// initialize handshake.
type InitializeOptions struct {
	RootURI               protocol.DocumentURI
	WorkspaceFolders       []protocol.WorkspaceFolder
	InitializationOptions any
}

// Initialize performs the initialize/initialized handshake and records
// the server's capabilities and negotiated position encoding.
func (c *Client) Initialize(ctx context.Context, opts InitializeOptions) (*protocol.ServerCapabilities, error) {
	c.setState(StateInitializing)

	params := &protocol.InitializeParams{
		ProcessID:        os.Getpid(),
		ClientInfo:       &protocol.ClientInfo{Name: "mcpls", Version: "0.1.0"},
		RootURI:          opts.RootURI,
		WorkspaceFolders: opts.WorkspaceFolders,
		Capabilities: protocol.ClientCapabilities{
			Workspace: protocol.WorkspaceClientCapabilities{
				ApplyEdit:     true,
				WorkspaceEdit: &protocol.WorkspaceEditClientCapabilities{DocumentChanges: true},
				Symbol: &protocol.WorkspaceSymbolClientCapabilities{
					SymbolKind: &protocol.SymbolKindOptions{ValueSet: protocol.AllSymbolKinds},
				},
			},
			TextDocument: protocol.TextDocumentClientCapabilities{
				Synchronization: protocol.TextDocumentSyncClientCapabilities{DidSave: true},
				Hover:           protocol.HoverClientCapabilities{ContentFormat: []string{"markdown", "plaintext"}},
				Rename:          protocol.RenameClientCapabilities{},
				DocumentSymbol: protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
					SymbolKind:                        &protocol.SymbolKindOptions{ValueSet: protocol.AllSymbolKinds},
				},
				CallHierarchy:      protocol.CallHierarchyClientCapabilities{},
				PublishDiagnostics: protocol.PublishDiagnosticsClientCapabilities{},
			},
			General: protocol.GeneralClientCapabilities{PositionEncodings: PreferredEncodings},
		},
		InitializationOptions: opts.InitializationOptions,
		Trace:                 "off",
	}

	var result protocol.InitializeResult
	if err := c.Request(ctx, "initialize", params, &result); err != nil {
		c.setState(StateTerminated)
		return nil, errs.Wrap(errs.InitFailed, err, "initialize request failed")
	}

	if err := c.Notify("initialized", struct{}{}); err != nil {
		c.setState(StateTerminated)
		return nil, errs.Wrap(errs.InitFailed, err, "initialized notification failed")
	}

	enc := result.Capabilities.PositionEncoding
	if enc == "" {
		enc = protocol.EncodingUTF16
	}

	c.mu.Lock()
	c.capabilities = result.Capabilities
	c.positionEncoding = enc
	c.state = StateReady
	c.mu.Unlock()

	return &result.Capabilities, nil
}

// Shutdown sends shutdown, awaits the reply, then sends exit and closes
// the transport. Individual step failures are non-fatal; shutdown is
// best-effort cleanup.
func (c *Client) Shutdown(ctx context.Context) error {
	c.setState(StateShuttingDown)
	shutdownErr := c.Request(ctx, "shutdown", nil, nil)
	exitErr := c.Notify("exit", nil)
	closeErr := c.framer.Close()
	c.setState(StateTerminated)

	if shutdownErr != nil {
		return shutdownErr
	}
	if exitErr != nil {
		return exitErr
	}
	return closeErr
}

func (c *Client) Hover(ctx context.Context, params protocol.TextDocumentPositionParams) (*protocol.Hover, error) {
	var result *protocol.Hover
	if err := c.Request(ctx, "textDocument/hover", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Definition(ctx context.Context, params protocol.DefinitionParams) ([]protocol.Location, error) {
	return c.requestLocations(ctx, "textDocument/definition", params)
}

func (c *Client) References(ctx context.Context, params protocol.ReferenceParams) ([]protocol.Location, error) {
	return c.requestLocations(ctx, "textDocument/references", params)
}

// requestLocations unmarshals a result that may be a single Location,
// an array of Location, or null, normalizing to a slice.
func (c *Client) requestLocations(ctx context.Context, method string, params any) ([]protocol.Location, error) {
	var raw rawLocationResult
	if err := c.Request(ctx, method, params, &raw); err != nil {
		return nil, err
	}
	return raw.normalize(), nil
}

func (c *Client) Rename(ctx context.Context, params protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	var result protocol.WorkspaceEdit
	if err := c.Request(ctx, "textDocument/rename", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Completion(ctx context.Context, params protocol.CompletionParams) (*protocol.CompletionList, error) {
	var raw rawCompletionResult
	if err := c.Request(ctx, "textDocument/completion", params, &raw); err != nil {
		return nil, err
	}
	return raw.normalize(), nil
}

func (c *Client) DocumentSymbols(ctx context.Context, params protocol.DocumentSymbolParams) (*DocumentSymbolResult, error) {
	var raw rawDocumentSymbolResult
	if err := c.Request(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return nil, err
	}
	return raw.normalize(), nil
}

func (c *Client) WorkspaceSymbol(ctx context.Context, params protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	var result []protocol.SymbolInformation
	if err := c.Request(ctx, "workspace/symbol", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Formatting(ctx context.Context, params protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	var result []protocol.TextEdit
	if err := c.Request(ctx, "textDocument/formatting", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CodeAction(ctx context.Context, params protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	var result []protocol.CodeAction
	if err := c.Request(ctx, "textDocument/codeAction", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) PrepareCallHierarchy(ctx context.Context, params protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	var result []protocol.CallHierarchyItem
	if err := c.Request(ctx, "textDocument/prepareCallHierarchy", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) IncomingCalls(ctx context.Context, params protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	var result []protocol.CallHierarchyIncomingCall
	if err := c.Request(ctx, "callHierarchy/incomingCalls", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) OutgoingCalls(ctx context.Context, params protocol.CallHierarchyOutgoingCallsParams) ([]protocol.CallHierarchyOutgoingCall, error) {
	var result []protocol.CallHierarchyOutgoingCall
	if err := c.Request(ctx, "callHierarchy/outgoingCalls", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DidOpen(params protocol.DidOpenTextDocumentParams) error {
	return c.Notify("textDocument/didOpen", params)
}

func (c *Client) DidChange(params protocol.DidChangeTextDocumentParams) error {
	return c.Notify("textDocument/didChange", params)
}

func (c *Client) DidClose(params protocol.DidCloseTextDocumentParams) error {
	return c.Notify("textDocument/didClose", params)
}
