// Package protocol contains the subset of LSP 3.17 wire types the
// bridge speaks: the JSON-RPC envelope plus the request/response shapes
// for every textDocument/* and workspace/* method the tool core issues.
package protocol

import "encoding/json"

// Message is a JSON-RPC 2.0 envelope covering requests, responses, and
// notifications. ID is a pointer so a zero id and "no id" are distinct,
// which matters for notification detection on the read side.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC 2.0 error object.
type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC error codes used when answering unsupported
// server-to-client requests.
const (
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

func NewRequest(id int64, method string, params any) (*Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Message{JSONRPC: "2.0", ID: &id, Method: method, Params: raw}, nil
}

func NewNotification(method string, params any) (*Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Message{JSONRPC: "2.0", Method: method, Params: raw}, nil
}

// --- Common shapes ---

type DocumentURI string

type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// PositionEncodingKind is the code-unit metric LSP coordinates are
// measured in, negotiated during initialize.
type PositionEncodingKind string

const (
	EncodingUTF8  PositionEncodingKind = "utf-8"
	EncodingUTF16 PositionEncodingKind = "utf-16"
	EncodingUTF32 PositionEncodingKind = "utf-32"
)

// Position is 0-based, measured in the negotiated encoding.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   DocumentURI `json:"uri"`
	Range Range       `json:"range"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type TextDocumentEdit struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Edits        []TextEdit                      `json:"edits"`
}

type WorkspaceEdit struct {
	Changes         map[DocumentURI][]TextEdit `json:"changes,omitempty"`
	DocumentChanges []TextDocumentEdit         `json:"documentChanges,omitempty"`
}

// --- Initialize ---

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type WorkspaceFolder struct {
	URI  DocumentURI `json:"uri"`
	Name string      `json:"name"`
}

type InitializeParams struct {
	ProcessID             int                `json:"processId"`
	ClientInfo            *ClientInfo        `json:"clientInfo,omitempty"`
	RootURI               DocumentURI        `json:"rootUri"`
	WorkspaceFolders      []WorkspaceFolder  `json:"workspaceFolders,omitempty"`
	Capabilities          ClientCapabilities `json:"capabilities"`
	InitializationOptions any                `json:"initializationOptions,omitempty"`
	Trace                 string             `json:"trace,omitempty"`
}

type ClientCapabilities struct {
	Workspace    WorkspaceClientCapabilities    `json:"workspace"`
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
	General      GeneralClientCapabilities      `json:"general"`
}

type GeneralClientCapabilities struct {
	PositionEncodings []PositionEncodingKind `json:"positionEncodings,omitempty"`
}

type WorkspaceClientCapabilities struct {
	ApplyEdit              bool                                `json:"applyEdit"`
	WorkspaceEdit          *WorkspaceEditClientCapabilities     `json:"workspaceEdit,omitempty"`
	DidChangeConfiguration DidChangeConfigurationCapabilities   `json:"didChangeConfiguration"`
	Symbol                 *WorkspaceSymbolClientCapabilities   `json:"symbol,omitempty"`
}

type WorkspaceEditClientCapabilities struct {
	DocumentChanges bool `json:"documentChanges"`
}

type DidChangeConfigurationCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type SymbolKindOptions struct {
	ValueSet []SymbolKind `json:"valueSet,omitempty"`
}

type WorkspaceSymbolClientCapabilities struct {
	DynamicRegistration bool               `json:"dynamicRegistration"`
	SymbolKind          *SymbolKindOptions `json:"symbolKind,omitempty"`
}

type TextDocumentClientCapabilities struct {
	Synchronization    TextDocumentSyncClientCapabilities       `json:"synchronization"`
	Hover              HoverClientCapabilities                 `json:"hover"`
	Completion         CompletionClientCapabilities             `json:"completion"`
	Definition         DefinitionClientCapabilities              `json:"definition"`
	References         ReferencesClientCapabilities              `json:"references"`
	Rename             RenameClientCapabilities                  `json:"rename"`
	DocumentSymbol     DocumentSymbolClientCapabilities           `json:"documentSymbol"`
	Formatting         FormattingClientCapabilities               `json:"formatting"`
	CodeAction         CodeActionClientCapabilities                `json:"codeAction"`
	CallHierarchy      CallHierarchyClientCapabilities              `json:"callHierarchy"`
	PublishDiagnostics PublishDiagnosticsClientCapabilities          `json:"publishDiagnostics"`
}

type TextDocumentSyncClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
	WillSave            bool `json:"willSave"`
	WillSaveWaitUntil   bool `json:"willSaveWaitUntil"`
	DidSave             bool `json:"didSave"`
}

type HoverClientCapabilities struct {
	DynamicRegistration bool     `json:"dynamicRegistration"`
	ContentFormat       []string `json:"contentFormat,omitempty"`
}

type CompletionClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type DefinitionClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type ReferencesClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type RenameClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
	PrepareSupport      bool `json:"prepareSupport"`
}

type DocumentSymbolClientCapabilities struct {
	DynamicRegistration               bool               `json:"dynamicRegistration"`
	HierarchicalDocumentSymbolSupport bool               `json:"hierarchicalDocumentSymbolSupport"`
	SymbolKind                        *SymbolKindOptions `json:"symbolKind,omitempty"`
}

type FormattingClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type CodeActionClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type CallHierarchyClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type PublishDiagnosticsClientCapabilities struct {
	RelatedInformation bool `json:"relatedInformation"`
	VersionSupport      bool `json:"versionSupport"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

type ServerCapabilities struct {
	PositionEncoding        PositionEncodingKind       `json:"positionEncoding,omitempty"`
	TextDocumentSync        json.RawMessage            `json:"textDocumentSync,omitempty"`
	HoverProvider           json.RawMessage            `json:"hoverProvider,omitempty"`
	CompletionProvider      *CompletionOptions         `json:"completionProvider,omitempty"`
	DefinitionProvider      json.RawMessage            `json:"definitionProvider,omitempty"`
	ReferencesProvider      json.RawMessage            `json:"referencesProvider,omitempty"`
	DocumentSymbolProvider  json.RawMessage            `json:"documentSymbolProvider,omitempty"`
	WorkspaceSymbolProvider json.RawMessage            `json:"workspaceSymbolProvider,omitempty"`
	CodeActionProvider      json.RawMessage            `json:"codeActionProvider,omitempty"`
	DocumentFormattingProvider json.RawMessage         `json:"documentFormattingProvider,omitempty"`
	RenameProvider          json.RawMessage            `json:"renameProvider,omitempty"`
	CallHierarchyProvider   json.RawMessage            `json:"callHierarchyProvider,omitempty"`
}

type CompletionOptions struct {
	ResolveProvider   bool     `json:"resolveProvider,omitempty"`
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// --- Text document synchronization ---

type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int         `json:"version"`
	Text       string      `json:"text"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength *int   `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// --- Diagnostics ---

type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range              Range               `json:"range"`
	Severity           DiagnosticSeverity  `json:"severity,omitempty"`
	Code               json.RawMessage     `json:"code,omitempty"`
	Source             string              `json:"source,omitempty"`
	Message            string              `json:"message"`
	Tags               []int               `json:"tags,omitempty"`
	RelatedInformation []RelatedInformation `json:"relatedInformation,omitempty"`
	Data               json.RawMessage     `json:"data,omitempty"`
}

type RelatedInformation struct {
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// --- window/* ---

type MessageType int

const (
	MessageError   MessageType = 1
	MessageWarning MessageType = 2
	MessageInfo    MessageType = 3
	MessageLog     MessageType = 4
)

type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

type ShowMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// --- Hover ---

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

// --- Definition / references ---

type DefinitionParams struct {
	TextDocumentPositionParams
}

type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

// --- Rename ---

type RenameParams struct {
	TextDocumentPositionParams
	NewName string `json:"newName"`
}

// --- Completion ---

type CompletionTriggerKind int

const (
	CompletionInvoked          CompletionTriggerKind = 1
	CompletionTriggerCharacter CompletionTriggerKind = 2
	CompletionIncomplete       CompletionTriggerKind = 3
)

type CompletionContext struct {
	TriggerKind      CompletionTriggerKind `json:"triggerKind"`
	TriggerCharacter string                `json:"triggerCharacter,omitempty"`
}

type CompletionParams struct {
	TextDocumentPositionParams
	Context *CompletionContext `json:"context,omitempty"`
}

type CompletionItem struct {
	Label         string          `json:"label"`
	Kind          int             `json:"kind,omitempty"`
	Detail        string          `json:"detail,omitempty"`
	Documentation json.RawMessage `json:"documentation,omitempty"`
	InsertText    string          `json:"insertText,omitempty"`
	SortText      string          `json:"sortText,omitempty"`
	FilterText    string          `json:"filterText,omitempty"`
}

type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// --- Document symbols / workspace symbols ---

type SymbolKind int

const (
	SKFile          SymbolKind = 1
	SKModule        SymbolKind = 2
	SKNamespace     SymbolKind = 3
	SKPackage       SymbolKind = 4
	SKClass         SymbolKind = 5
	SKMethod        SymbolKind = 6
	SKProperty      SymbolKind = 7
	SKField         SymbolKind = 8
	SKConstructor   SymbolKind = 9
	SKEnum          SymbolKind = 10
	SKInterface     SymbolKind = 11
	SKFunction      SymbolKind = 12
	SKVariable      SymbolKind = 13
	SKConstant      SymbolKind = 14
	SKString        SymbolKind = 15
	SKNumber        SymbolKind = 16
	SKBoolean       SymbolKind = 17
	SKArray         SymbolKind = 18
	SKObject        SymbolKind = 19
	SKKey           SymbolKind = 20
	SKNull          SymbolKind = 21
	SKEnumMember    SymbolKind = 22
	SKStruct        SymbolKind = 23
	SKEvent         SymbolKind = 24
	SKOperator      SymbolKind = 25
	SKTypeParameter SymbolKind = 26
)

var AllSymbolKinds = []SymbolKind{
	SKFile, SKModule, SKNamespace, SKPackage, SKClass, SKMethod, SKProperty, SKField,
	SKConstructor, SKEnum, SKInterface, SKFunction, SKVariable, SKConstant, SKString,
	SKNumber, SKBoolean, SKArray, SKObject, SKKey, SKNull, SKEnumMember, SKStruct,
	SKEvent, SKOperator, SKTypeParameter,
}

type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Location      Location   `json:"location"`
	ContainerName string     `json:"containerName,omitempty"`
}

type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

// --- Formatting ---

type FormattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Options      FormattingOptions      `json:"options"`
}

// --- Code actions ---

type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Only        []string     `json:"only,omitempty"`
}

type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
}

type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

type CodeAction struct {
	Title       string          `json:"title"`
	Kind        string          `json:"kind,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Edit        *WorkspaceEdit  `json:"edit,omitempty"`
	Command     *Command        `json:"command,omitempty"`
	IsPreferred bool            `json:"isPreferred,omitempty"`
}

// --- Call hierarchy ---

type CallHierarchyPrepareParams struct {
	TextDocumentPositionParams
}

type CallHierarchyItem struct {
	Name           string          `json:"name"`
	Kind           SymbolKind      `json:"kind"`
	Detail         string          `json:"detail,omitempty"`
	URI            DocumentURI     `json:"uri"`
	Range          Range           `json:"range"`
	SelectionRange Range           `json:"selectionRange"`
	Data           json.RawMessage `json:"data,omitempty"`
}

type CallHierarchyIncomingCallsParams struct {
	Item CallHierarchyItem `json:"item"`
}

type CallHierarchyIncomingCall struct {
	From       CallHierarchyItem `json:"from"`
	FromRanges []Range           `json:"fromRanges"`
}

type CallHierarchyOutgoingCallsParams struct {
	Item CallHierarchyItem `json:"item"`
}

type CallHierarchyOutgoingCall struct {
	To         CallHierarchyItem `json:"to"`
	FromRanges []Range           `json:"fromRanges"`
}

// --- Dynamic registration (client/registerCapability) ---

type Registration struct {
	ID              string          `json:"id"`
	Method          string          `json:"method"`
	RegisterOptions json.RawMessage `json:"registerOptions,omitempty"`
}

type RegistrationParams struct {
	Registrations []Registration `json:"registrations"`
}

// --- workspace/applyEdit ---

type ApplyWorkspaceEditParams struct {
	Label string        `json:"label,omitempty"`
	Edit  WorkspaceEdit `json:"edit"`
}

type ApplyWorkspaceEditResult struct {
	Applied       bool   `json:"applied"`
	FailureReason string `json:"failureReason,omitempty"`
}
