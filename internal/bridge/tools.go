package bridge

import (
	"context"
	"encoding/json"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/lspclient"
	"github.com/mcpls/mcpls/internal/postrans"
	"github.com/mcpls/mcpls/internal/protocol"
)

// toLSPPosition runs the common MCP→LSP coordinate prologue: validate
// the coordinate bounds, then translate against the target document's
// own lines and the dispatched client's negotiated encoding.
func toLSPPosition(lines []string, enc protocol.PositionEncodingKind, line, character int) (protocol.Position, error) {
	if err := validateCoordinate("line", line); err != nil {
		return protocol.Position{}, err
	}
	if err := validateCoordinate("character", character); err != nil {
		return protocol.Position{}, err
	}
	return postrans.ToLSP(line, character, enc, lines)
}

func toBridgePosition(pos protocol.Position, enc protocol.PositionEncodingKind, lines []string) Position {
	mcp := postrans.FromLSP(pos, enc, lines)
	return Position{Line: mcp.Line, Character: mcp.Character}
}

func (b *Bridge) toBridgeRange(res *clientResources, enc protocol.PositionEncodingKind, uri protocol.DocumentURI, r protocol.Range) Range {
	lines := b.linesFor(res, uri)
	return Range{Start: toBridgePosition(r.Start, enc, lines), End: toBridgePosition(r.End, enc, lines)}
}

func (b *Bridge) toBridgeLocation(res *clientResources, enc protocol.PositionEncodingKind, loc protocol.Location) Location {
	return Location{URI: string(loc.URI), Range: b.toBridgeRange(res, enc, loc.URI, loc.Range)}
}

// HandleHover implements get_hover.
func (b *Bridge) HandleHover(ctx context.Context, args HoverArgs) (*HoverResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()
	lines := b.linesFor(res, doc.URI)
	pos, err := toLSPPosition(lines, enc, args.Line, args.Character)
	if err != nil {
		return nil, err
	}

	hover, err := client.Hover(ctx, protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Position:     pos,
	})
	if err != nil {
		return nil, err
	}
	if hover == nil {
		return &HoverResult{}, nil
	}
	result := &HoverResult{Contents: hover.Contents.Value}
	if hover.Range != nil {
		br := b.toBridgeRange(res, enc, doc.URI, *hover.Range)
		result.Range = &br
	}
	return result, nil
}

// HandleDefinition implements get_definition.
func (b *Bridge) HandleDefinition(ctx context.Context, args DefinitionArgs) (*DefinitionResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()
	pos, err := toLSPPosition(b.linesFor(res, doc.URI), enc, args.Line, args.Character)
	if err != nil {
		return nil, err
	}

	locs, err := client.Definition(ctx, protocol.DefinitionParams{TextDocumentPositionParams: protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI}, Position: pos,
	}})
	if err != nil {
		return nil, err
	}
	out := make([]Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, b.toBridgeLocation(res, enc, loc))
	}
	return &DefinitionResult{Locations: out}, nil
}

// HandleReferences implements get_references.
func (b *Bridge) HandleReferences(ctx context.Context, args ReferencesArgs) (*ReferencesResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()
	pos, err := toLSPPosition(b.linesFor(res, doc.URI), enc, args.Line, args.Character)
	if err != nil {
		return nil, err
	}

	locs, err := client.References(ctx, protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI}, Position: pos,
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: args.IncludeDeclaration},
	})
	if err != nil {
		return nil, err
	}
	out := make([]Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, b.toBridgeLocation(res, enc, loc))
	}
	return &ReferencesResult{Locations: out}, nil
}

func toBridgeDiagnostics(b *Bridge, res *clientResources, enc protocol.PositionEncodingKind, uri protocol.DocumentURI, diags []protocol.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, Diagnostic{
			Range:    b.toBridgeRange(res, enc, uri, d.Range),
			Severity: int(d.Severity),
			Code:     string(d.Code),
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return out
}

// HandleDiagnostics implements get_diagnostics: it opens the document
// (so the server starts analyzing it) and returns whatever is already
// cached without waiting, rather than issuing a pull request the
// server may not support.
func (b *Bridge) HandleDiagnostics(ctx context.Context, args DiagnosticsArgs) (*DiagnosticsResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	diags, _ := res.cache.Diagnostics(doc.URI)
	return &DiagnosticsResult{Diagnostics: toBridgeDiagnostics(b, res, client.PositionEncoding(), doc.URI, diags)}, nil
}

// HandleCachedDiagnostics implements get_cached_diagnostics: a
// read-only lookup that never opens the document. It does dispatch the
// path, so the file's server is spawned if it is not running yet.
func (b *Bridge) HandleCachedDiagnostics(ctx context.Context, args CachedDiagnosticsArgs) (*CachedDiagnosticsResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, _, err := b.dispatcher.Dispatch(ctx, path)
	if err != nil {
		return nil, err
	}
	res := b.resourcesFor(client)
	if res == nil {
		return nil, errs.New(errs.Internal, "no resources registered for dispatched client")
	}
	uri, err := pathToURI(path)
	if err != nil {
		return nil, err
	}
	diags, ok := res.cache.Diagnostics(uri)
	return &CachedDiagnosticsResult{
		Diagnostics: toBridgeDiagnostics(b, res, client.PositionEncoding(), uri, diags),
		Cached:      ok,
	}, nil
}

// HandleRenameSymbol implements rename_symbol. The returned
// WorkspaceEdit is passed through in LSP coordinates, unapplied.
func (b *Bridge) HandleRenameSymbol(ctx context.Context, args RenameArgs) (*RenameResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	pos, err := toLSPPosition(b.linesFor(res, doc.URI), client.PositionEncoding(), args.Line, args.Character)
	if err != nil {
		return nil, err
	}

	edit, err := client.Rename(ctx, protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI}, Position: pos,
		},
		NewName: args.NewName,
	})
	if err != nil {
		return nil, err
	}
	if edit == nil {
		return &RenameResult{}, nil
	}

	result := &RenameResult{}
	if len(edit.Changes) > 0 {
		result.Changes = make(map[string][]RawTextEdit, len(edit.Changes))
		for uri, edits := range edit.Changes {
			raw := make([]RawTextEdit, 0, len(edits))
			for _, e := range edits {
				rangeJSON, _ := json.Marshal(e.Range)
				raw = append(raw, RawTextEdit{Range: rangeJSON, NewText: e.NewText})
			}
			result.Changes[string(uri)] = raw
		}
	}
	if len(edit.DocumentChanges) > 0 {
		result.DocumentChanges, _ = json.Marshal(edit.DocumentChanges)
	}
	return result, nil
}

// HandleCompletions implements get_completions.
func (b *Bridge) HandleCompletions(ctx context.Context, args CompletionArgs) (*CompletionResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	pos, err := toLSPPosition(b.linesFor(res, doc.URI), client.PositionEncoding(), args.Line, args.Character)
	if err != nil {
		return nil, err
	}

	var cctx *protocol.CompletionContext
	if args.Trigger != "" {
		cctx = &protocol.CompletionContext{TriggerKind: protocol.CompletionTriggerCharacter, TriggerCharacter: args.Trigger}
	}

	list, err := client.Completion(ctx, protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI}, Position: pos,
		},
		Context: cctx,
	})
	if err != nil {
		return nil, err
	}
	items := make([]CompletionItem, 0, len(list.Items))
	for _, it := range list.Items {
		items = append(items, CompletionItem{Label: it.Label, Kind: it.Kind, Detail: it.Detail, InsertText: it.InsertText})
	}
	return &CompletionResult{IsIncomplete: list.IsIncomplete, Items: items}, nil
}

func toBridgeDocumentSymbol(b *Bridge, res *clientResources, enc protocol.PositionEncodingKind, uri protocol.DocumentURI, s protocol.DocumentSymbol) DocumentSymbol {
	children := make([]DocumentSymbol, 0, len(s.Children))
	for _, c := range s.Children {
		children = append(children, toBridgeDocumentSymbol(b, res, enc, uri, c))
	}
	return DocumentSymbol{
		Name:           s.Name,
		Detail:         s.Detail,
		Kind:           int(s.Kind),
		Range:          b.toBridgeRange(res, enc, uri, s.Range),
		SelectionRange: b.toBridgeRange(res, enc, uri, s.SelectionRange),
		Children:       children,
	}
}

// HandleDocumentSymbols implements get_document_symbols.
func (b *Bridge) HandleDocumentSymbols(ctx context.Context, args DocumentSymbolsArgs) (*DocumentSymbolsResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()

	raw, err := client.DocumentSymbols(ctx, protocol.DocumentSymbolParams{TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI}})
	if err != nil {
		return nil, err
	}
	result := &DocumentSymbolsResult{}
	for _, s := range raw.Hierarchical {
		result.Hierarchical = append(result.Hierarchical, toBridgeDocumentSymbol(b, res, enc, doc.URI, s))
	}
	for _, s := range raw.Flat {
		result.Flat = append(result.Flat, SymbolInformation{
			Name: s.Name, Kind: int(s.Kind), ContainerName: s.ContainerName,
			Location: b.toBridgeLocation(res, enc, s.Location),
		})
	}
	return result, nil
}

// HandleFormatDocument implements format_document.
func (b *Bridge) HandleFormatDocument(ctx context.Context, args FormatArgs) (*FormatResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()

	tabSize := args.TabSize
	if tabSize <= 0 {
		tabSize = 4
	}
	insertSpaces := true
	if args.InsertSpaces != nil {
		insertSpaces = *args.InsertSpaces
	}

	edits, err := client.Formatting(ctx, protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Options:      protocol.FormattingOptions{TabSize: tabSize, InsertSpaces: insertSpaces},
	})
	if err != nil {
		return nil, err
	}
	out := make([]TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, TextEdit{Range: b.toBridgeRange(res, enc, doc.URI, e.Range), NewText: e.NewText})
	}
	return &FormatResult{Edits: out}, nil
}

// HandleWorkspaceSymbolSearch implements workspace_symbol_search. It
// queries the first Ready client that declares workspace/symbol
// support, since workspace/symbol is not scoped to a single already-open
// document. Returns Unsupported if no spawned client qualifies.
func (b *Bridge) HandleWorkspaceSymbolSearch(ctx context.Context, args WorkspaceSymbolSearchArgs) (*WorkspaceSymbolSearchResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 100
	}

	client := b.firstReadyWorkspaceSymbolClient()
	if client == nil {
		return nil, errs.New(errs.Unsupported, "no Ready client declares workspace/symbol support")
	}
	res := b.resourcesFor(client)
	if res == nil {
		return nil, errs.New(errs.Unsupported, "no Ready client declares workspace/symbol support")
	}

	kindFilter := make(map[string]struct{}, len(args.KindFilter))
	for _, k := range args.KindFilter {
		kindFilter[k] = struct{}{}
	}

	found, err := client.WorkspaceSymbol(ctx, protocol.WorkspaceSymbolParams{Query: args.Query})
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()
	var symbols []SymbolInformation
	for _, s := range found {
		if len(kindFilter) > 0 {
			if _, ok := kindFilter[symbolKindName(s.Kind)]; !ok {
				continue
			}
		}
		symbols = append(symbols, SymbolInformation{
			Name: s.Name, Kind: int(s.Kind), ContainerName: s.ContainerName,
			Location: b.toBridgeLocation(res, enc, s.Location),
		})
		if len(symbols) >= limit {
			break
		}
	}
	return &WorkspaceSymbolSearchResult{Symbols: symbols}, nil
}

// firstReadyWorkspaceSymbolClient returns the first spawned client that
// is Ready and whose server capabilities advertise workspaceSymbolProvider,
// or nil if none qualify.
func (b *Bridge) firstReadyWorkspaceSymbolClient() *lspclient.Client {
	for _, client := range b.dispatcher.Clients() {
		if client == nil || client.State() != lspclient.StateReady {
			continue
		}
		provider := client.Capabilities().WorkspaceSymbolProvider
		if len(provider) == 0 || string(provider) == "false" {
			continue
		}
		return client
	}
	return nil
}

// HandleCodeActions implements get_code_actions.
func (b *Bridge) HandleCodeActions(ctx context.Context, args CodeActionsArgs) (*CodeActionsResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	enc := client.PositionEncoding()
	lines := b.linesFor(res, doc.URI)

	start, err := toLSPPosition(lines, enc, args.StartLine, args.StartCharacter)
	if err != nil {
		return nil, err
	}
	end, err := toLSPPosition(lines, enc, args.EndLine, args.EndCharacter)
	if err != nil {
		return nil, err
	}

	diags, _ := res.cache.Diagnostics(doc.URI)
	actions, err := client.CodeAction(ctx, protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        protocol.Range{Start: start, End: end},
		Context:      protocol.CodeActionContext{Diagnostics: diags, Only: args.KindFilter},
	})
	if err != nil {
		return nil, err
	}
	out := make([]CodeAction, 0, len(actions))
	for _, a := range actions {
		var editJSON json.RawMessage
		if a.Edit != nil {
			editJSON, _ = json.Marshal(a.Edit)
		}
		var cmdJSON json.RawMessage
		if a.Command != nil {
			cmdJSON, _ = json.Marshal(a.Command)
		}
		out = append(out, CodeAction{Title: a.Title, Kind: a.Kind, IsPreferred: a.IsPreferred, Edit: editJSON, Command: cmdJSON})
	}
	return &CodeActionsResult{Actions: out}, nil
}

// HandlePrepareCallHierarchy implements prepare_call_hierarchy. Items
// are returned as JSON re-encoded from the decoded
// protocol.CallHierarchyItem, in LSP coordinates, to be handed back
// unmodified to get_incoming_calls/get_outgoing_calls.
func (b *Bridge) HandlePrepareCallHierarchy(ctx context.Context, args PrepareCallHierarchyArgs) (*PrepareCallHierarchyResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, res, doc, err := b.dispatchAndOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	pos, err := toLSPPosition(b.linesFor(res, doc.URI), client.PositionEncoding(), args.Line, args.Character)
	if err != nil {
		return nil, err
	}

	items, err := client.PrepareCallHierarchy(ctx, protocol.CallHierarchyPrepareParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI}, Position: pos,
		},
	})
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	return &PrepareCallHierarchyResult{Items: out}, nil
}

// decodeCallHierarchyItem validates and unmarshals an opaque item blob
// previously returned from prepare_call_hierarchy.
func decodeCallHierarchyItem(raw json.RawMessage) (protocol.CallHierarchyItem, error) {
	if err := validateBlobSize(raw); err != nil {
		return protocol.CallHierarchyItem{}, err
	}
	var item protocol.CallHierarchyItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return protocol.CallHierarchyItem{}, errs.Wrap(errs.Internal, err, "decode call hierarchy item")
	}
	if err := validateFileURI(item.URI); err != nil {
		return protocol.CallHierarchyItem{}, err
	}
	return item, nil
}

// dispatchForURI resolves the client for uri's file path, spawning it
// if needed, without opening the document (call hierarchy items
// reference files the tool core may not have opened itself).
func (b *Bridge) dispatchForURI(ctx context.Context, uri protocol.DocumentURI) (*lspclient.Client, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	client, _, err := b.dispatcher.Dispatch(ctx, path)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// HandleIncomingCalls implements get_incoming_calls.
func (b *Bridge) HandleIncomingCalls(ctx context.Context, args IncomingCallsArgs) (*IncomingCallsResult, error) {
	item, err := decodeCallHierarchyItem(args.Item)
	if err != nil {
		return nil, err
	}
	client, err := b.dispatchForURI(ctx, item.URI)
	if err != nil {
		return nil, err
	}
	calls, err := client.IncomingCalls(ctx, protocol.CallHierarchyIncomingCallsParams{Item: item})
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(calls))
	for _, c := range calls {
		raw, err := json.Marshal(c)
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	return &IncomingCallsResult{Calls: out}, nil
}

// HandleOutgoingCalls implements get_outgoing_calls.
func (b *Bridge) HandleOutgoingCalls(ctx context.Context, args OutgoingCallsArgs) (*OutgoingCallsResult, error) {
	item, err := decodeCallHierarchyItem(args.Item)
	if err != nil {
		return nil, err
	}
	client, err := b.dispatchForURI(ctx, item.URI)
	if err != nil {
		return nil, err
	}
	calls, err := client.OutgoingCalls(ctx, protocol.CallHierarchyOutgoingCallsParams{Item: item})
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(calls))
	for _, c := range calls {
		raw, err := json.Marshal(c)
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	return &OutgoingCallsResult{Calls: out}, nil
}

// HandleServerLogs implements get_server_logs.
func (b *Bridge) HandleServerLogs(ctx context.Context, args ServerLogsArgs) (*ServerLogsResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, _, err := b.dispatcher.Dispatch(ctx, path)
	if err != nil {
		return nil, err
	}
	res := b.resourcesFor(client)
	if res == nil {
		return nil, errs.New(errs.Internal, "no resources registered for dispatched client")
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}
	entries := res.cache.Logs(limit, parseMinLevel(args.MinLevel))
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntry{Level: levelName(e.Type), Message: e.Message, Timestamp: formatTimestamp(e.Timestamp)})
	}
	return &ServerLogsResult{Logs: out}, nil
}

// HandleServerMessages implements get_server_messages.
func (b *Bridge) HandleServerMessages(ctx context.Context, args ServerMessagesArgs) (*ServerMessagesResult, error) {
	path, err := validatePath(args.FilePath, b.workspaceRoots)
	if err != nil {
		return nil, err
	}
	client, _, err := b.dispatcher.Dispatch(ctx, path)
	if err != nil {
		return nil, err
	}
	res := b.resourcesFor(client)
	if res == nil {
		return nil, errs.New(errs.Internal, "no resources registered for dispatched client")
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	entries := res.cache.Messages(limit)
	out := make([]MessageEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, MessageEntry{Level: levelName(e.Type), Message: e.Message, Timestamp: formatTimestamp(e.Timestamp)})
	}
	return &ServerMessagesResult{Messages: out}, nil
}

// HandleServerStatus implements get_server_status.
func (b *Bridge) HandleServerStatus(ctx context.Context, _ ServerStatusArgs) (*ServerStatusResult, error) {
	statuses := b.dispatcher.Status()
	clients := b.dispatcher.Clients()

	out := make([]ServerStatus, len(statuses))
	for i, s := range statuses {
		docCount := 0
		if i < len(clients) && clients[i] != nil {
			if res := b.resourcesFor(clients[i]); res != nil {
				docCount = res.tracker.DocCount()
			}
		}
		out[i] = ServerStatus{LanguageID: s.LanguageID, Command: s.Command, State: s.State, OpenDocuments: docCount}
	}
	return &ServerStatusResult{Servers: out}, nil
}

// symbolKindName renders a protocol.SymbolKind as the lowercase name
// kind_filter arguments are expected to use.
func symbolKindName(k protocol.SymbolKind) string {
	switch k {
	case protocol.SKFile:
		return "file"
	case protocol.SKModule:
		return "module"
	case protocol.SKNamespace:
		return "namespace"
	case protocol.SKPackage:
		return "package"
	case protocol.SKClass:
		return "class"
	case protocol.SKMethod:
		return "method"
	case protocol.SKProperty:
		return "property"
	case protocol.SKField:
		return "field"
	case protocol.SKConstructor:
		return "constructor"
	case protocol.SKEnum:
		return "enum"
	case protocol.SKInterface:
		return "interface"
	case protocol.SKFunction:
		return "function"
	case protocol.SKVariable:
		return "variable"
	case protocol.SKConstant:
		return "constant"
	case protocol.SKString:
		return "string"
	case protocol.SKNumber:
		return "number"
	case protocol.SKBoolean:
		return "boolean"
	case protocol.SKArray:
		return "array"
	case protocol.SKObject:
		return "object"
	case protocol.SKKey:
		return "key"
	case protocol.SKNull:
		return "null"
	case protocol.SKEnumMember:
		return "enum_member"
	case protocol.SKStruct:
		return "struct"
	case protocol.SKEvent:
		return "event"
	case protocol.SKOperator:
		return "operator"
	case protocol.SKTypeParameter:
		return "type_parameter"
	default:
		return "unknown"
	}
}
