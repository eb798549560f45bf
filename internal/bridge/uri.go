package bridge

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mcpls/mcpls/internal/errs"
	"github.com/mcpls/mcpls/internal/protocol"
)

// driveLetter matches a Windows drive-letter prefix such as "C:".
var driveLetter = regexp.MustCompile(`^[A-Za-z]:`)

// pathToURI builds the file:// URI for an absolute path. It must
// round-trip: parsing the result back yields the same canonical path
// on every platform, which is why it goes through url.URL rather than
// simple string concatenation (needed for paths containing spaces or
// other characters requiring percent-encoding).
//
// Drive-letter paths are detected and slash-converted independent of
// filepath's GOOS-specific behavior, since a drive-letter path can
// reach this function even when mcpls itself is built for a
// non-Windows GOOS (e.g. a workspace root supplied verbatim from a
// remote Windows client). url.URL also won't add the leading slash a
// drive-letter path needs ("C:/Users/foo" stays "C:/Users/foo" rather
// than becoming "/C:/Users/foo"), so that prefix is forced onto Path
// directly rather than left to u.String() to host-ify.
func pathToURI(path string) (protocol.DocumentURI, error) {
	if !filepath.IsAbs(path) && !driveLetter.MatchString(path) {
		return "", errs.New(errs.Internal, "pathToURI requires an absolute path, got %q", path)
	}
	var slashed string
	if driveLetter.MatchString(path) {
		slashed = "/" + strings.ReplaceAll(path, `\`, "/")
	} else {
		slashed = filepath.ToSlash(path)
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return protocol.DocumentURI(u.String()), nil
}

// uriToPath is pathToURI's inverse.
func uriToPath(uri protocol.DocumentURI) (string, error) {
	s := string(uri)
	if !strings.HasPrefix(s, "file://") {
		return "", errs.New(errs.Internal, "uriToPath requires a file:// uri, got %q", uri)
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", errs.Wrap(errs.Internal, err, "parse uri %q", uri)
	}
	p := u.Path
	if strings.HasPrefix(p, "/") && driveLetter.MatchString(p[1:]) {
		return strings.ReplaceAll(p[1:], "/", `\`), nil
	}
	return filepath.FromSlash(p), nil
}

// linesFor returns the document's content split into lines, preferring
// the tracker's cached copy (so edits not yet saved to disk are
// reflected) and falling back to reading the file directly for
// locations the tool core has not opened itself (e.g. a definition
// reported in a sibling file).
func (b *Bridge) linesFor(res *clientResources, uri protocol.DocumentURI) []string {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	if doc, ok := res.tracker.Get(path); ok {
		return strings.Split(doc.Content, "\n")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(string(raw), "\n")
}
