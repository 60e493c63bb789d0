package unit

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/nobgo/nob/depfile"
)

// SrcRoot is the conventional source root that ToObjectPath maps paths
// relative to, mirroring the distilled tool's "src/<rel>/<name>.cpp" ->
// "build/<rel>/<name>.o" convention. A driver may override it before
// calling Discover/ToObjectPath.
var SrcRoot = "src"

// ToObjectPath maps a "src/<rel>/<name>.cpp" source path onto its
// "build/<rel>/<name>.o" object path.
func ToObjectPath(source string) string {
	rel, err := filepath.Rel(SrcRoot, source)
	if err != nil {
		rel = source
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".o"
	return filepath.Join(BuildRoot, rel)
}

// DiscoverOptions controls which ".cpp" files Discover picks up under a
// root directory, supplementing the bare recursive walk described in the
// spec with glob include/exclude filters (relative to rootDir) so a
// project can restrict or carve sources out of its tree without
// restructuring directories.
type DiscoverOptions struct {
	// Include, if non-empty, keeps only paths (relative to rootDir)
	// matching at least one of these filepath.Match-style glob patterns.
	// An empty Include means "no include filter" -- every path passes.
	Include []string

	// Exclude drops any path (relative to rootDir) matching one of these
	// filepath.Match-style glob patterns. Applied after Include.
	Exclude []string
}

// Discover recursively walks rootDir and builds a link-unit Unit with
// target as its output, with one compile-unit child per ".cpp" file found.
// If a sibling ".d" file already exists for a source, it is parsed and
// each header listed becomes a header-dep child of that compile unit.
func Discover(rootDir, target string) (*Unit, error) {
	return DiscoverFiltered(rootDir, target, DiscoverOptions{})
}

// DiscoverFiltered is Discover with explicit include/exclude glob filters.
func DiscoverFiltered(rootDir, target string, opts DiscoverOptions) (*Unit, error) {
	pattern := filepath.Join(rootDir, "**", "*.cpp")
	matches, err := zglob.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("discover: glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	root := NewLinkUnit(target)

	for _, path := range matches {
		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			rel = path
		}

		if !included(rel, opts.Include) || excluded(rel, opts.Exclude) {
			continue
		}

		objPath := ToObjectPath(path)
		child := NewCompileUnit(path, objPath)

		dFile := filepath.Join(filepath.Dir(objPath), strings.TrimSuffix(filepath.Base(objPath), ".o")+".d")
		if exists(dFile) {
			headers, depErr := depfile.Parse(dFile)
			if depErr != nil {
				return nil, fmt.Errorf("discover: %s: %w", dFile, depErr)
			}
			for _, header := range headers {
				child.AddDep(NewHeaderDep(header))
			}
		}

		root.AddDep(child)
	}

	return root, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// included reports whether rel matches at least one pattern, or true if
// patterns is empty (no include filter configured).
func included(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
