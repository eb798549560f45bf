package bridge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

// MaxBlobSize is the size cap on opaque JSON blobs accepted as
// arguments (call-hierarchy items).
const MaxBlobSize = 1 << 20 // 1 MiB

// MaxCoordinate mirrors postrans.MaxCoordinate; duplicated here rather
// than imported to keep validation a pure, dependency-free prologue
// check independent of the translator's internals.
const MaxCoordinate = 1_000_000

// validatePath canonicalizes an absolute file path and requires it to
// resolve under one of the configured workspace roots.
func validatePath(path string, workspaceRoots []string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", errs.New(errs.PathEscape, "path %q must be absolute", path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = filepath.Clean(path)
		} else {
			return "", errs.Wrap(errs.PathEscape, err, "resolve %s", path)
		}
	}

	for _, root := range workspaceRoots {
		rel, err := filepath.Rel(root, resolved)
		if err != nil {
			continue
		}
		if rel == "." || !strings.HasPrefix(rel, "..") {
			return resolved, nil
		}
	}
	return "", errs.New(errs.PathEscape, "%s is not under any configured workspace root", path)
}

// validateCoordinate bounds a 1-based line/character argument.
func validateCoordinate(name string, v int) error {
	if v < 1 {
		return errs.New(errs.OutOfRange, "%s must be >= 1, got %d", name, v)
	}
	if v > MaxCoordinate {
		return errs.New(errs.OutOfRange, "%s exceeds %d", name, MaxCoordinate)
	}
	return nil
}

// validateBlobSize enforces the 1 MiB cap on opaque JSON blobs.
func validateBlobSize(raw json.RawMessage) error {
	if len(raw) > MaxBlobSize {
		return errs.New(errs.PayloadTooLarge, "argument blob of %d bytes exceeds %d byte cap", len(raw), MaxBlobSize)
	}
	return nil
}

// validateFileURI enforces the file://-only scheme rule on opaque
// items (call-hierarchy items) that carry a URI.
func validateFileURI(uri protocol.DocumentURI) error {
	if !strings.HasPrefix(string(uri), "file://") {
		return errs.New(errs.Unsupported, "uri %q must use the file scheme", uri)
	}
	return nil
}
