// Package postrans converts between MCP's 1-based, UTF-8-code-unit
// coordinates and LSP's 0-based coordinates measured in the server's
// negotiated position encoding.
package postrans

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

// MaxCoordinate is the upper bound on line/character parameters
// accepted from MCP callers.
const MaxCoordinate = 1_000_000

// ToLSP converts a 1-based MCP position (line, character in UTF-8
// code units) to a 0-based LSP position in enc, consulting the
// document's lines for UTF-16/UTF-32 encodings. lines is the document
// split on '\n' (without trailing newlines stripped from each line).
func ToLSP(line, character int, enc protocol.PositionEncodingKind, lines []string) (protocol.Position, error) {
	if line < 1 || character < 1 {
		return zeroClamped(line, character), nil
	}
	if line > MaxCoordinate || character > MaxCoordinate {
		return protocol.Position{}, errs.New(errs.OutOfRange, "line/character exceeds %d", MaxCoordinate)
	}

	lspLine := line - 1
	if lspLine >= len(lines) {
		return protocol.Position{}, errs.New(errs.OutOfRange, "line %d past end of file", line)
	}

	col := character - 1
	lineText := lines[lspLine]

	switch enc {
	case protocol.EncodingUTF8, "":
		maxCol := len(lineText)
		if col > maxCol {
			col = maxCol
		}
		return protocol.Position{Line: lspLine, Character: col}, nil
	case protocol.EncodingUTF16:
		return protocol.Position{Line: lspLine, Character: utf8ColToUTF16(lineText, col)}, nil
	case protocol.EncodingUTF32:
		return protocol.Position{Line: lspLine, Character: utf8ColToUTF32(lineText, col)}, nil
	default:
		return protocol.Position{}, errs.New(errs.Unsupported, "unknown position encoding %q", enc)
	}
}

// zeroClamped handles the underflow case: line/character below 1 clamp
// to 0 rather than wrapping, per spec.
func zeroClamped(line, character int) protocol.Position {
	l, c := line-1, character-1
	if l < 0 {
		l = 0
	}
	if c < 0 {
		c = 0
	}
	return protocol.Position{Line: l, Character: c}
}

// FromLSP converts a 0-based LSP position in enc back to a 1-based
// MCP position in UTF-8 code units.
func FromLSP(pos protocol.Position, enc protocol.PositionEncodingKind, lines []string) protocol.Position {
	mcpLine := pos.Line + 1
	if pos.Line < 0 || pos.Line >= len(lines) {
		return protocol.Position{Line: mcpLine, Character: pos.Character + 1}
	}
	lineText := lines[pos.Line]

	var utf8Col int
	switch enc {
	case protocol.EncodingUTF16:
		utf8Col = utf16ColToUTF8(lineText, pos.Character)
	case protocol.EncodingUTF32:
		utf8Col = utf32ColToUTF8(lineText, pos.Character)
	default:
		utf8Col = pos.Character
		if utf8Col > len(lineText) {
			utf8Col = len(lineText)
		}
	}

	return protocol.Position{Line: mcpLine, Character: utf8Col + 1}
}

// utf8ColToUTF16 counts UTF-16 code units across the UTF-8 code points
// from the start of line up to byte offset utf8Col, clamping to the
// line's full UTF-16 length if utf8Col runs past end of line.
func utf8ColToUTF16(line string, utf8Col int) int {
	if utf8Col > len(line) {
		utf8Col = len(line)
	}
	units := 0
	for i, r := range line {
		if i >= utf8Col {
			break
		}
		if r1, r2 := utf16.EncodeRune(r); r1 == utf8.RuneError && r2 == utf8.RuneError {
			units++
		} else {
			units += 2
		}
	}
	return units
}

// utf8ColToUTF32 counts Unicode scalar values (runes) across the UTF-8
// code points from the start of line up to byte offset utf8Col.
func utf8ColToUTF32(line string, utf8Col int) int {
	if utf8Col > len(line) {
		utf8Col = len(line)
	}
	count := 0
	for i := range line {
		if i >= utf8Col {
			break
		}
		count++
	}
	return count
}

// utf16ColToUTF8 maps a UTF-16 code-unit column back to a UTF-8 byte
// offset in line, clamping to end of line.
func utf16ColToUTF8(line string, utf16Col int) int {
	units := 0
	for i, r := range line {
		if units >= utf16Col {
			return i
		}
		if r1, r2 := utf16.EncodeRune(r); r1 == utf8.RuneError && r2 == utf8.RuneError {
			units++
		} else {
			units += 2
		}
	}
	return len(line)
}

// utf32ColToUTF8 maps a UTF-32 (scalar-value) column back to a UTF-8
// byte offset in line, clamping to end of line.
func utf32ColToUTF8(line string, utf32Col int) int {
	count := 0
	for i := range line {
		if count >= utf32Col {
			return i
		}
		count++
	}
	return len(line)
}
