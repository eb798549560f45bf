package postrans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

func TestToLSP_UTF8_Basic(t *testing.T) {
	lines := []string{"fn main(){let x=1;}"}
	pos, err := ToLSP(1, 14, protocol.EncodingUTF8, lines)
	require.NoError(t, err)
	assert.Equal(t, protocol.Position{Line: 0, Character: 13}, pos)
}

func TestToLSP_CharacterOneMapsToColumnZero(t *testing.T) {
	lines := []string{"abc"}
	pos, err := ToLSP(1, 1, protocol.EncodingUTF8, lines)
	require.NoError(t, err)
	assert.Equal(t, 0, pos.Character)
}

func TestToLSP_CharacterPastEndOfLineClamps(t *testing.T) {
	lines := []string{"abc"}
	pos, err := ToLSP(1, 9999, protocol.EncodingUTF8, lines)
	require.NoError(t, err)
	assert.Equal(t, 3, pos.Character)
}

func TestToLSP_LinePastEndOfFileRejectsOutOfRange(t *testing.T) {
	lines := []string{"abc"}
	_, err := ToLSP(5, 1, protocol.EncodingUTF8, lines)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.OutOfRange))
}

func TestToLSP_AboveMaxCoordinateRejects(t *testing.T) {
	lines := []string{"abc"}
	_, err := ToLSP(MaxCoordinate+1, 1, protocol.EncodingUTF8, lines)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.OutOfRange))
}

func TestToLSP_UnderflowClampsToZero(t *testing.T) {
	lines := []string{"abc"}
	pos, err := ToLSP(0, 0, protocol.EncodingUTF8, lines)
	require.NoError(t, err)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, pos)
}

func TestRoundTrip_UTF8_InRange(t *testing.T) {
	lines := []string{"hello world"}
	lsp, err := ToLSP(1, 7, protocol.EncodingUTF8, lines)
	require.NoError(t, err)
	mcp := FromLSP(lsp, protocol.EncodingUTF8, lines)
	assert.Equal(t, protocol.Position{Line: 1, Character: 7}, mcp)
}

func TestRoundTrip_UTF16_AroundMultibyteCodePoint(t *testing.T) {
	// "a😀b" — 'a' occupies UTF-8 byte 0, the emoji (a surrogate pair in
	// UTF-16) occupies bytes 1-4, 'b' occupies byte 5. MCP characters
	// are 1-based UTF-8 byte offsets, so character 2 is the boundary
	// right after 'a' (start of the emoji) and character 6 is the
	// boundary right after the emoji (start of 'b').
	line := "a😀b"
	lines := []string{line}

	afterA, err := ToLSP(1, 2, protocol.EncodingUTF16, lines)
	require.NoError(t, err)
	afterEmoji, err := ToLSP(1, 6, protocol.EncodingUTF16, lines)
	require.NoError(t, err)

	assert.Equal(t, 1, afterA.Character)
	// The emoji occupies 2 UTF-16 units (a surrogate pair), so the
	// column following it must be exactly 2 further along than the
	// column preceding it.
	assert.Equal(t, afterA.Character+2, afterEmoji.Character)
}

func TestRoundTrip_UTF32_CountsScalarValuesNotBytes(t *testing.T) {
	lines := []string{"a😀b"}
	// Byte offset 5 is the start of 'b' (1-based MCP character 6).
	lsp, err := ToLSP(1, 6, protocol.EncodingUTF32, lines)
	require.NoError(t, err)
	// 'a' (1 scalar value) + emoji (1 scalar value) = column 2 before
	// 'b' in UTF-32 scalar terms, regardless of the emoji's 4 UTF-8 bytes.
	assert.Equal(t, 2, lsp.Character)

	mcp := FromLSP(lsp, protocol.EncodingUTF32, lines)
	assert.Equal(t, 1, mcp.Line)
}
