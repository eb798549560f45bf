package lspclient

import (
	"bytes"
	"encoding/json"

	"github.com/mcpls/mcpls/internal/protocol"
)

// rawLocationResult absorbs the three shapes textDocument/definition
// and textDocument/references may return: null, a single Location, or
// an array of Location (LocationLink is not requested since the client
// never advertises linkSupport).
type rawLocationResult struct {
	raw json.RawMessage
}

func (r *rawLocationResult) UnmarshalJSON(b []byte) error {
	r.raw = append([]byte(nil), b...)
	return nil
}

func (r *rawLocationResult) normalize() []protocol.Location {
	if len(r.raw) == 0 || string(r.raw) == "null" {
		return nil
	}
	var list []protocol.Location
	if err := json.Unmarshal(r.raw, &list); err == nil {
		return list
	}
	var single protocol.Location
	if err := json.Unmarshal(r.raw, &single); err == nil {
		return []protocol.Location{single}
	}
	return nil
}

// rawCompletionResult absorbs null, a bare CompletionItem array, or a
// CompletionList.
type rawCompletionResult struct {
	raw json.RawMessage
}

func (r *rawCompletionResult) UnmarshalJSON(b []byte) error {
	r.raw = append([]byte(nil), b...)
	return nil
}

func (r *rawCompletionResult) normalize() *protocol.CompletionList {
	if len(r.raw) == 0 || string(r.raw) == "null" {
		return &protocol.CompletionList{}
	}
	var list protocol.CompletionList
	if err := json.Unmarshal(r.raw, &list); err == nil && list.Items != nil {
		return &list
	}
	var items []protocol.CompletionItem
	if err := json.Unmarshal(r.raw, &items); err == nil {
		return &protocol.CompletionList{Items: items}
	}
	return &protocol.CompletionList{}
}

// DocumentSymbolResult holds whichever shape the server returned:
// hierarchical DocumentSymbol or flat SymbolInformation.
type DocumentSymbolResult struct {
	Hierarchical []protocol.DocumentSymbol
	Flat         []protocol.SymbolInformation
}

type rawDocumentSymbolResult struct {
	raw json.RawMessage
}

func (r *rawDocumentSymbolResult) UnmarshalJSON(b []byte) error {
	r.raw = append([]byte(nil), b...)
	return nil
}

// normalize distinguishes the hierarchical DocumentSymbol shape from
// the flat SymbolInformation shape by the presence of the
// "selectionRange" field, which only DocumentSymbol carries; both
// shapes otherwise unmarshal into each other without error.
func (r *rawDocumentSymbolResult) normalize() *DocumentSymbolResult {
	if len(r.raw) == 0 || string(r.raw) == "null" {
		return &DocumentSymbolResult{}
	}
	if bytes.Contains(r.raw, []byte(`"selectionRange"`)) {
		var hierarchical []protocol.DocumentSymbol
		if err := json.Unmarshal(r.raw, &hierarchical); err == nil {
			return &DocumentSymbolResult{Hierarchical: hierarchical}
		}
	}
	var flat []protocol.SymbolInformation
	if err := json.Unmarshal(r.raw, &flat); err == nil {
		return &DocumentSymbolResult{Flat: flat}
	}
	return &DocumentSymbolResult{}
}
