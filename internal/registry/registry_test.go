package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/lspclient"
	"github.com/mcpls/mcpls/internal/protocol"
)

// fakeReadyClient builds an lspclient.Client that is immediately Ready
// without spawning a process or driving a real initialize handshake.
func fakeReadyClient(t *testing.T) *lspclient.Client {
	t.Helper()
	return lspclient.NewReadyForTest()
}

func TestDispatch_RejectsPathOutsideWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	d := New(Config{WorkspaceRoots: []string{root}}, nil, zerolog.Nop())

	_, _, err := d.Dispatch(context.Background(), "/etc/passwd")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.PathEscape))
}

func TestDispatch_NoServerForUnknownExtension(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.xyz")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	d := New(Config{WorkspaceRoots: []string{root}}, nil, zerolog.Nop())
	_, _, err := d.Dispatch(context.Background(), file)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NoServerForFile))
}

func TestDispatch_ExtensionMapWinsOverGlob(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var spawned int32
	factory := func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
		atomic.AddInt32(&spawned, 1)
		assert.Equal(t, "override-lang", spec.LanguageID)
		return fakeReadyClient(t), nil
	}

	d := New(Config{
		WorkspaceRoots: []string{root},
		Specs: []ServerSpec{
			{LanguageID: "glob-lang", FilePatterns: []string{"**/*.txt"}},
			{LanguageID: "override-lang", FilePatterns: []string{"**/*.never"}},
		},
		LanguageExtensions: map[string]string{".txt": "override-lang"},
	}, factory, zerolog.Nop())

	_, spec, err := d.Dispatch(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "override-lang", spec.LanguageID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&spawned))
}

func TestDispatch_GlobMatchSelectsLanguage(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "a.rs")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	factory := func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
		return fakeReadyClient(t), nil
	}

	d := New(Config{
		WorkspaceRoots: []string{root},
		Specs:          []ServerSpec{{LanguageID: "rust", FilePatterns: []string{"**/*.rs"}}},
	}, factory, zerolog.Nop())

	_, spec, err := d.Dispatch(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "rust", spec.LanguageID)
}

func TestDispatch_HeuristicsFallback_SecondSpecWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "setup.py"), []byte("x"), 0o644))
	file := filepath.Join(root, "x.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var spawnedLang string
	factory := func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
		spawnedLang = spec.Command
		return fakeReadyClient(t), nil
	}

	d := New(Config{
		WorkspaceRoots:     []string{root},
		HeuristicsMaxDepth: 2,
		Specs: []ServerSpec{
			{LanguageID: "python", Command: "spec-a", FilePatterns: []string{"**/*.py"}, ProjectMarkers: []string{"pyproject.toml"}},
			{LanguageID: "python", Command: "spec-b", FilePatterns: []string{"**/*.py"}, ProjectMarkers: []string{"setup.py"}},
		},
	}, factory, zerolog.Nop())

	_, spec, err := d.Dispatch(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "spec-b", spec.Command)
	assert.Equal(t, "spec-b", spawnedLang)
}

func TestDispatch_AllHeuristicsFailReturnsHeuristicsReject(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	d := New(Config{
		WorkspaceRoots:     []string{root},
		HeuristicsMaxDepth: 1,
		Specs: []ServerSpec{
			{LanguageID: "python", FilePatterns: []string{"**/*.py"}, ProjectMarkers: []string{"pyproject.toml"}},
		},
	}, nil, zerolog.Nop())

	_, _, err := d.Dispatch(context.Background(), file)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.HeuristicsReject))
}

func TestDispatch_ReadyClientIsReusedWithoutRespawning(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.rs")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var spawnCount int32
	factory := func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
		atomic.AddInt32(&spawnCount, 1)
		return fakeReadyClient(t), nil
	}

	d := New(Config{
		WorkspaceRoots: []string{root},
		Specs:          []ServerSpec{{LanguageID: "rust", FilePatterns: []string{"**/*.rs"}}},
	}, factory, zerolog.Nop())

	_, _, err := d.Dispatch(context.Background(), file)
	require.NoError(t, err)
	_, _, err = d.Dispatch(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&spawnCount))
}

func TestDispatch_InitFailedDisablesSpecButStatusReflectsIt(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.rs")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	factory := func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
		return nil, errs.New(errs.Internal, "boom")
	}

	d := New(Config{
		WorkspaceRoots: []string{root},
		Specs:          []ServerSpec{{LanguageID: "rust", FilePatterns: []string{"**/*.rs"}}},
	}, factory, zerolog.Nop())

	_, _, err := d.Dispatch(context.Background(), file)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InitFailed))

	status := d.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "NotSpawned", status[0].State)
}

func TestDispatch_ConcurrentCallsCoalesceToOneSpawn(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.rs")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var spawnCount int32
	factory := func(ctx context.Context, spec ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
		atomic.AddInt32(&spawnCount, 1)
		time.Sleep(20 * time.Millisecond)
		return fakeReadyClient(t), nil
	}

	d := New(Config{
		WorkspaceRoots: []string{root},
		Specs:          []ServerSpec{{LanguageID: "rust", FilePatterns: []string{"**/*.rs"}}},
	}, factory, zerolog.Nop())

	const n = 8
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, _, err := d.Dispatch(context.Background(), file)
			errCh <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errCh)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&spawnCount))
}
