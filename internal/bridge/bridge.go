// Package bridge is the Translator / Tool Core: the public surface
// the MCP runtime calls. Each Handle* method validates arguments,
// resolves the right LSP client, ensures the target document is open,
// translates coordinates, issues the LSP request, and reshapes the
// response back into MCP coordinates and JSON shapes.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcpls/mcpls/internal/doctracker"
	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/lspclient"
	"github.com/mcpls/mcpls/internal/notifcache"
	"github.com/mcpls/mcpls/internal/protocol"
	"github.com/mcpls/mcpls/internal/registry"
)

// clientResources bundles the per-client state the bridge maintains
// alongside the client itself: its open-document tracker and its
// notification cache. The dispatcher only knows about ClientEntry
// lifecycle; ownership of these two lives here so the Translator can
// hold a handle to both without giving the client a back-reference
// (see the cyclic-ownership design note this mirrors).
type clientResources struct {
	tracker *doctracker.FileTracker
	cache   *notifcache.Cache
	cancel  context.CancelFunc
}

// Bridge is the Tool Core.
type Bridge struct {
	dispatcher     *registry.Dispatcher
	workspaceRoots []string
	log            zerolog.Logger

	mu        sync.Mutex
	resources map[*lspclient.Client]*clientResources

	cacheOpts notifcache.Options
}

// Options configures a new Bridge.
type Options struct {
	Config    registry.Config
	CacheOpts notifcache.Options
	Logger    zerolog.Logger
}

// New builds a Bridge and the registry Dispatcher it drives. The
// factory closure owns spawning the child process, running the
// initialize handshake, and wiring the client's notifications into a
// freshly created notifcache.Cache — keeping that wiring a bridge
// concern rather than a registry one.
func New(opts Options) *Bridge {
	b := &Bridge{
		workspaceRoots: opts.Config.WorkspaceRoots,
		log:            opts.Logger,
		resources:      make(map[*lspclient.Client]*clientResources),
		cacheOpts:      opts.CacheOpts,
	}
	b.dispatcher = registry.New(opts.Config, b.spawnClient, opts.Logger)
	return b
}

// spawnClient is the registry.ClientFactory: spawn the process,
// initialize it, and register its notification cache/document tracker.
func (b *Bridge) spawnClient(ctx context.Context, spec registry.ServerSpec, rootURI protocol.DocumentURI) (*lspclient.Client, error) {
	timeout := time.Duration(spec.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	notifyCh := make(chan *protocol.Message, 256)
	client, err := lspclient.New(lspclient.Options{
		Command:  spec.Command,
		Args:     spec.Args,
		Env:      spec.Env,
		Timeout:  timeout,
		NotifyCh: notifyCh,
		Logger:   b.log.With().Str("language", spec.LanguageID).Logger(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := client.Initialize(ctx, lspclient.InitializeOptions{
		RootURI:               rootURI,
		InitializationOptions: spec.InitializationOptions,
	}); err != nil {
		return nil, err
	}

	cache := notifcache.New(b.cacheOpts)
	tracker := doctracker.New(client, cache, pathToURI)

	pumpCtx, cancel := context.WithCancel(context.Background())
	go cache.Pump(pumpCtx, notifyCh, b.log)

	b.mu.Lock()
	b.resources[client] = &clientResources{tracker: tracker, cache: cache, cancel: cancel}
	b.mu.Unlock()

	return client, nil
}

// resourcesFor returns the tracker/cache pair for client, which must
// have been produced by spawnClient.
func (b *Bridge) resourcesFor(client *lspclient.Client) *clientResources {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resources[client]
}

// dispatchAndOpen resolves path to a Ready client and ensures the
// document is open on it, the common prologue shared by every tool
// that issues a textDocument/* request.
func (b *Bridge) dispatchAndOpen(ctx context.Context, path string) (*lspclient.Client, *clientResources, *doctracker.DocumentState, error) {
	client, spec, err := b.dispatcher.Dispatch(ctx, path)
	if err != nil {
		return nil, nil, nil, err
	}
	res := b.resourcesFor(client)
	if res == nil {
		return nil, nil, nil, errs.New(errs.Internal, "no resources registered for dispatched client")
	}
	doc, err := res.tracker.EnsureOpen(ctx, path, spec.LanguageID)
	if err != nil {
		return nil, nil, nil, err
	}
	return client, res, doc, nil
}

// Shutdown drains resources and shuts down every spawned client.
func (b *Bridge) Shutdown(ctx context.Context) {
	b.mu.Lock()
	for _, res := range b.resources {
		res.cancel()
	}
	b.mu.Unlock()
	b.dispatcher.Shutdown(ctx)
}
