package bridge

import "encoding/json"

// Position and Range mirror protocol.Position/protocol.Range but are
// declared separately so their doc comments can say what they actually
// are on this side of the wire: 1-based, UTF-8 code units, the MCP
// tool surface's coordinate system rather than the LSP one.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// PositionArgs is embedded by every tool that targets a single point
// in a document.
type PositionArgs struct {
	FilePath  string `json:"file_path" jsonschema:"required,description=Absolute path to the file"`
	Line      int    `json:"line" jsonschema:"required,description=1-based line number"`
	Character int    `json:"character" jsonschema:"required,description=1-based character offset\\, counted in UTF-8 code units"`
}

type HoverArgs struct {
	PositionArgs
}

type HoverResult struct {
	Contents string `json:"contents"`
	Range    *Range `json:"range,omitempty"`
}

type DefinitionArgs struct {
	PositionArgs
}

type DefinitionResult struct {
	Locations []Location `json:"locations"`
}

type ReferencesArgs struct {
	PositionArgs
	IncludeDeclaration bool `json:"include_declaration,omitempty" jsonschema:"description=Include the declaration itself in the results,default=false"`
}

type ReferencesResult struct {
	Locations []Location `json:"locations"`
}

type DiagnosticsArgs struct {
	FilePath string `json:"file_path" jsonschema:"required,description=Absolute path to the file"`
}

type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

type DiagnosticsResult struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type CachedDiagnosticsArgs struct {
	FilePath string `json:"file_path" jsonschema:"required,description=Absolute path to the file"`
}

type CachedDiagnosticsResult struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Cached      bool         `json:"cached"`
}

type RenameArgs struct {
	PositionArgs
	NewName string `json:"new_name" jsonschema:"required,description=The replacement symbol name"`
}

// RenameResult passes the server's WorkspaceEdit through unchanged, in
// LSP coordinates: the edit is never applied to disk, and a caller
// that wants to apply it needs it byte-identical to what the server
// produced.
type RenameResult struct {
	Changes         map[string][]RawTextEdit `json:"changes,omitempty"`
	DocumentChanges json.RawMessage          `json:"document_changes,omitempty"`
}

type RawTextEdit struct {
	Range   json.RawMessage `json:"range"`
	NewText string          `json:"new_text"`
}

type CompletionArgs struct {
	PositionArgs
	Trigger string `json:"trigger,omitempty" jsonschema:"description=Optional trigger character that invoked completion"`
}

type CompletionItem struct {
	Label      string `json:"label"`
	Kind       int    `json:"kind,omitempty"`
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insert_text,omitempty"`
}

type CompletionResult struct {
	IsIncomplete bool             `json:"is_incomplete"`
	Items        []CompletionItem `json:"items"`
}

type DocumentSymbolsArgs struct {
	FilePath string `json:"file_path" jsonschema:"required,description=Absolute path to the file"`
}

type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           int              `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selection_range"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

type SymbolInformation struct {
	Name          string   `json:"name"`
	Kind          int      `json:"kind"`
	Location      Location `json:"location"`
	ContainerName string   `json:"container_name,omitempty"`
}

type DocumentSymbolsResult struct {
	Hierarchical []DocumentSymbol    `json:"hierarchical,omitempty"`
	Flat         []SymbolInformation `json:"flat,omitempty"`
}

type FormatArgs struct {
	FilePath     string `json:"file_path" jsonschema:"required,description=Absolute path to the file"`
	TabSize      int    `json:"tab_size,omitempty" jsonschema:"description=Spaces per indent level,default=4"`
	InsertSpaces *bool  `json:"insert_spaces,omitempty" jsonschema:"description=Use spaces instead of tabs,default=true"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

type FormatResult struct {
	Edits []TextEdit `json:"edits"`
}

type WorkspaceSymbolSearchArgs struct {
	Query      string   `json:"query" jsonschema:"required,description=Search query"`
	KindFilter []string `json:"kind_filter,omitempty" jsonschema:"description=Optional symbol kind names to restrict results to"`
	Limit      int      `json:"limit,omitempty" jsonschema:"description=Maximum number of results,default=100"`
}

type WorkspaceSymbolSearchResult struct {
	Symbols []SymbolInformation `json:"symbols"`
}

type CodeActionsArgs struct {
	FilePath       string   `json:"file_path" jsonschema:"required,description=Absolute path to the file"`
	StartLine      int      `json:"start_line" jsonschema:"required,description=1-based start line"`
	StartCharacter int      `json:"start_character" jsonschema:"required,description=1-based start character"`
	EndLine        int      `json:"end_line" jsonschema:"required,description=1-based end line"`
	EndCharacter   int      `json:"end_character" jsonschema:"required,description=1-based end character"`
	KindFilter     []string `json:"kind_filter,omitempty" jsonschema:"description=Optional code action kinds to restrict results to"`
}

type CodeAction struct {
	Title       string          `json:"title"`
	Kind        string          `json:"kind,omitempty"`
	IsPreferred bool            `json:"is_preferred,omitempty"`
	Edit        json.RawMessage `json:"edit,omitempty"`
	Command     json.RawMessage `json:"command,omitempty"`
}

type CodeActionsResult struct {
	Actions []CodeAction `json:"actions"`
}

// Call hierarchy items are passed through opaquely: the server's item
// from prepareCallHierarchy, re-encoded as JSON with its coordinates
// left untranslated, to be handed back unmodified to
// get_incoming_calls/get_outgoing_calls. Only the fields of
// protocol.CallHierarchyItem (including the raw data field) are kept.
// Many servers embed identity in the uri/range/data fields that would
// break if this side re-derived or re-translated them.
type PrepareCallHierarchyArgs struct {
	PositionArgs
}

type PrepareCallHierarchyResult struct {
	Items []json.RawMessage `json:"items"`
}

type IncomingCallsArgs struct {
	Item json.RawMessage `json:"item" jsonschema:"required,description=An item previously returned by prepare_call_hierarchy\\, passed back unmodified"`
}

type IncomingCallsResult struct {
	Calls []json.RawMessage `json:"calls"`
}

type OutgoingCallsArgs struct {
	Item json.RawMessage `json:"item" jsonschema:"required,description=An item previously returned by prepare_call_hierarchy\\, passed back unmodified"`
}

type OutgoingCallsResult struct {
	Calls []json.RawMessage `json:"calls"`
}

type ServerLogsArgs struct {
	FilePath string `json:"file_path" jsonschema:"required,description=A file path used to identify which language server's logs to read"`
	Limit    int    `json:"limit,omitempty" jsonschema:"description=Maximum number of entries,default=50"`
	MinLevel string `json:"min_level,omitempty" jsonschema:"description=Minimum severity to include: error, warning, info, or log"`
}

type LogEntry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ServerLogsResult struct {
	Logs []LogEntry `json:"logs"`
}

type ServerMessagesArgs struct {
	FilePath string `json:"file_path" jsonschema:"required,description=A file path used to identify which language server's messages to read"`
	Limit    int    `json:"limit,omitempty" jsonschema:"description=Maximum number of entries,default=20"`
}

type MessageEntry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ServerMessagesResult struct {
	Messages []MessageEntry `json:"messages"`
}

type ServerStatusArgs struct{}

type ServerStatus struct {
	LanguageID    string `json:"language_id"`
	Command       string `json:"command"`
	State         string `json:"state"`
	OpenDocuments int    `json:"open_documents"`
}

type ServerStatusResult struct {
	Servers []ServerStatus `json:"servers"`
}
