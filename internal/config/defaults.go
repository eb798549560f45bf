package config

import (
	"os"
	"path/filepath"

	"github.com/mcpls/mcpls/internal/registry"
)

// defaultSpec is one entry of the built-in language table: a language
// id, the conventional LSP executable for it, the glob patterns that
// select it, and the project-marker files that disambiguate it from
// siblings sharing a file extension.
type defaultSpec struct {
	languageID     string
	command        string
	args           []string
	filePatterns   []string
	projectMarkers []string
}

// defaultSpecs covers the languages a freshly cloned workspace is
// likely to contain, using each language's conventional LSP server
// executable. Commands are resolved from PATH at spawn time; a
// language whose server isn't installed simply fails InitFailed and
// is skipped, per the registry's graceful-degradation policy.
var defaultSpecs = []defaultSpec{
	{"go", "gopls", nil, []string{"**/*.go"}, []string{"go.mod"}},
	{"typescript", "typescript-language-server", []string{"--stdio"}, []string{"**/*.ts", "**/*.tsx"}, []string{"package.json", "tsconfig.json"}},
	{"javascript", "typescript-language-server", []string{"--stdio"}, []string{"**/*.js", "**/*.jsx", "**/*.mjs"}, []string{"package.json"}},
	{"python", "pyright-langserver", []string{"--stdio"}, []string{"**/*.py"}, []string{"pyproject.toml", "setup.py", "setup.cfg"}},
	{"rust", "rust-analyzer", nil, []string{"**/*.rs"}, []string{"Cargo.toml"}},
	{"c", "clangd", nil, []string{"**/*.c", "**/*.h"}, []string{"compile_commands.json", "CMakeLists.txt"}},
	{"cpp", "clangd", nil, []string{"**/*.cc", "**/*.cpp", "**/*.cxx", "**/*.hpp"}, []string{"compile_commands.json", "CMakeLists.txt"}},
	{"java", "jdtls", nil, []string{"**/*.java"}, []string{"pom.xml", "build.gradle"}},
	{"kotlin", "kotlin-language-server", nil, []string{"**/*.kt", "**/*.kts"}, []string{"build.gradle.kts", "settings.gradle.kts"}},
	{"ruby", "solargraph", []string{"stdio"}, []string{"**/*.rb"}, []string{"Gemfile"}},
	{"php", "intelephense", []string{"--stdio"}, []string{"**/*.php"}, []string{"composer.json"}},
	{"csharp", "omnisharp", []string{"-lsp"}, []string{"**/*.cs"}, []string{"*.sln", "*.csproj"}},
	{"swift", "sourcekit-lsp", nil, []string{"**/*.swift"}, []string{"Package.swift"}},
	{"scala", "metals", nil, []string{"**/*.scala"}, []string{"build.sbt"}},
	{"haskell", "haskell-language-server-wrapper", []string{"--lsp"}, []string{"**/*.hs"}, []string{"*.cabal", "stack.yaml"}},
	{"elixir", "elixir-ls", nil, []string{"**/*.ex", "**/*.exs"}, []string{"mix.exs"}},
	{"erlang", "erlang_ls", nil, []string{"**/*.erl", "**/*.hrl"}, []string{"rebar.config"}},
	{"clojure", "clojure-lsp", nil, []string{"**/*.clj", "**/*.cljs", "**/*.cljc"}, []string{"deps.edn", "project.clj"}},
	{"lua", "lua-language-server", nil, []string{"**/*.lua"}, nil},
	{"perl", "perlnavigator", []string{"--stdio"}, []string{"**/*.pl", "**/*.pm"}, nil},
	{"r", "languageserver", nil, []string{"**/*.r", "**/*.R"}, []string{"DESCRIPTION"}},
	{"zig", "zls", nil, []string{"**/*.zig"}, []string{"build.zig"}},
	{"dart", "dart", []string{"language-server", "--protocol=lsp"}, []string{"**/*.dart"}, []string{"pubspec.yaml"}},
	{"bash", "bash-language-server", []string{"start"}, []string{"**/*.sh", "**/*.bash"}, nil},
	{"yaml", "yaml-language-server", []string{"--stdio"}, []string{"**/*.yaml", "**/*.yml"}, nil},
	{"json", "vscode-json-language-server", []string{"--stdio"}, []string{"**/*.json"}, nil},
	{"toml", "taplo", []string{"lsp", "stdio"}, []string{"**/*.toml"}, nil},
	{"markdown", "marksman", nil, []string{"**/*.md", "**/*.markdown"}, nil},
	{"terraform", "terraform-ls", []string{"serve"}, []string{"**/*.tf", "**/*.tfvars"}, nil},
	{"nix", "nil", nil, []string{"**/*.nix"}, []string{"flake.nix"}},
}

// Defaults builds a BridgeConfig rooted at the current working
// directory, covering the built-in language table, for use when no
// configuration file is found at any discovery location.
func Defaults() *BridgeConfig {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	specs := make([]registry.ServerSpec, 0, len(defaultSpecs))
	for _, d := range defaultSpecs {
		specs = append(specs, registry.ServerSpec{
			LanguageID:     d.languageID,
			Command:        d.command,
			Args:           d.args,
			FilePatterns:   d.filePatterns,
			TimeoutSeconds: 30,
			ProjectMarkers: d.projectMarkers,
		})
	}

	return &BridgeConfig{
		WorkspaceRoots:     []string{root},
		HeuristicsMaxDepth: 4,
		Specs:              specs,
		LanguageExtensions: map[string]string{},
	}
}
