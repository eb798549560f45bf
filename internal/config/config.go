// Package config loads the TOML configuration that describes the
// workspace roots and configured LSP servers, with discovery across
// an explicit path, an environment variable, a workspace-local file,
// and the platform config directory, falling back to a built-in
// default covering a few dozen common languages.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/notifcache"
	"github.com/mcpls/mcpls/internal/registry"
)

// BridgeConfig is the fully-resolved, validated configuration the
// bridge is built from.
type BridgeConfig struct {
	WorkspaceRoots     []string
	HeuristicsMaxDepth int
	Specs              []registry.ServerSpec
	LanguageExtensions map[string]string
	CacheOpts          notifcache.Options
}

// RegistryConfig projects the fields the registry.Dispatcher needs.
func (c BridgeConfig) RegistryConfig() registry.Config {
	return registry.Config{
		WorkspaceRoots:     c.WorkspaceRoots,
		HeuristicsMaxDepth: c.HeuristicsMaxDepth,
		Specs:              c.Specs,
		LanguageExtensions: c.LanguageExtensions,
	}
}

// --- TOML shapes ---

type tomlRoot struct {
	Workspace          tomlWorkspace           `toml:"workspace"`
	LSPServers         []tomlLSPServer         `toml:"lsp_servers"`
	LanguageExtensions []tomlLanguageExtension `toml:"language_extensions"`
}

type tomlWorkspace struct {
	Roots              []string `toml:"roots"`
	PositionEncodings  []string `toml:"position_encodings"`
	HeuristicsMaxDepth int      `toml:"heuristics_max_depth"`
}

type tomlHeuristics struct {
	ProjectMarkers []string `toml:"project_markers"`
}

type tomlLSPServer struct {
	LanguageID            string            `toml:"language_id"`
	Command               string            `toml:"command"`
	Args                  []string          `toml:"args"`
	Env                   map[string]string `toml:"env"`
	FilePatterns          []string          `toml:"file_patterns"`
	TimeoutSeconds        int               `toml:"timeout_seconds"`
	InitializationOptions map[string]any    `toml:"initialization_options"`
	Heuristics            tomlHeuristics    `toml:"heuristics"`
}

type tomlLanguageExtension struct {
	Extensions []string `toml:"extensions"`
	LanguageID string    `toml:"language_id"`
}

// ResolvePath applies the discovery order: an explicit path (typically
// from -c/--config), then $MCPLS_CONFIG, then ./mcpls.toml, then the
// platform config directory. An explicit path or $MCPLS_CONFIG value
// is returned as given, without checking that the file exists. Returns
// "" if neither is set and neither local candidate exists, meaning the
// caller should fall back to Defaults().
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("MCPLS_CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat("mcpls.toml"); err == nil {
		return "mcpls.toml"
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "mcpls", "mcpls.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load resolves and parses the configuration file, falling back to
// Defaults() when no file is found at any discovery location.
func Load(explicitPath string) (*BridgeConfig, error) {
	path := ResolvePath(explicitPath)
	if path == "" {
		return Defaults(), nil
	}

	var raw tomlRoot
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "decode config %s", path)
	}
	return fromTOML(raw)
}

func fromTOML(raw tomlRoot) (*BridgeConfig, error) {
	if len(raw.Workspace.Roots) == 0 {
		return nil, errs.New(errs.ConfigInvalid, "workspace.roots must contain at least one path")
	}

	roots := make([]string, 0, len(raw.Workspace.Roots))
	for _, r := range raw.Workspace.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, errs.Wrap(errs.ConfigInvalid, err, "resolve workspace root %s", r)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, errs.Wrap(errs.ConfigInvalid, err, "workspace root %s", abs)
		}
		roots = append(roots, abs)
	}

	maxDepth := raw.Workspace.HeuristicsMaxDepth
	if maxDepth <= 0 {
		maxDepth = 4
	}

	specs := make([]registry.ServerSpec, 0, len(raw.LSPServers))
	for i, s := range raw.LSPServers {
		if s.LanguageID == "" {
			return nil, errs.New(errs.ConfigInvalid, "lsp_servers[%d]: language_id is required", i)
		}
		if s.Command == "" {
			return nil, errs.New(errs.ConfigInvalid, "lsp_servers[%d]: command is required", i)
		}
		timeout := s.TimeoutSeconds
		if timeout <= 0 {
			timeout = 30
		}
		specs = append(specs, registry.ServerSpec{
			LanguageID:            s.LanguageID,
			Command:               s.Command,
			Args:                  s.Args,
			Env:                   envSlice(s.Env),
			FilePatterns:          s.FilePatterns,
			TimeoutSeconds:        timeout,
			InitializationOptions: s.InitializationOptions,
			ProjectMarkers:        s.Heuristics.ProjectMarkers,
		})
	}

	extMap := make(map[string]string)
	for _, le := range raw.LanguageExtensions {
		for _, ext := range le.Extensions {
			extMap[normalizeExt(ext)] = le.LanguageID
		}
	}

	return &BridgeConfig{
		WorkspaceRoots:     roots,
		HeuristicsMaxDepth: maxDepth,
		Specs:              specs,
		LanguageExtensions: extMap,
	}, nil
}

func envSlice(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
