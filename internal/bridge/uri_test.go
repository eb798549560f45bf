package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathToURI_RoundTrip_POSIX(t *testing.T) {
	uri, err := pathToURI("/home/user/project/main.go")
	require.NoError(t, err)
	assert.Equal(t, "file:///home/user/project/main.go", string(uri))

	back, err := uriToPath(uri)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/project/main.go", back)
}

func TestPathToURI_RoundTrip_WindowsDriveLetter(t *testing.T) {
	uri, err := pathToURI(`C:\Users\foo\bar.rs`)
	require.NoError(t, err)
	assert.Equal(t, "file:///C:/Users/foo/bar.rs", string(uri))

	back, err := uriToPath(uri)
	require.NoError(t, err)
	assert.Equal(t, `C:\Users\foo\bar.rs`, back)
}

func TestPathToURI_RejectsRelativePath(t *testing.T) {
	_, err := pathToURI("relative/path.go")
	require.Error(t, err)
}
