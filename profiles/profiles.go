// Package profiles loads named profiles and multi-dimensional profile
// selections from an on-disk hjson config, and resolves command-line
// tokens against them.
package profiles

import (
	"fmt"
	"os"
	"strings"

	"github.com/client9/xson/hjson"
	"github.com/fatih/camelcase"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// Profile is a named pair of flag lists appended to a Unit's compile and
// link flags when the profile is active.
type Profile struct {
	CompileFlags []string `json:"compile_flags"`
	LinkFlags    []string `json:"link_flags"`
}

// Dimension is a named set of mutually exclusive profile choices, selected
// together with other dimensions via a slash-separated query string.
type Dimension map[string]Profile

// Set is everything loaded from a profile/dimension config file: bare
// named profiles plus named dimensions.
type Set struct {
	Profiles   map[string]Profile  `json:"profiles"`
	Dimensions map[string]Dimension `json:"dimensions"`
}

// Load reads and parses the hjson document at path. A missing file is not
// an error -- it resolves to an empty Set, since profiles are optional.
func Load(path string) (*Set, error) {
	set := &Set{
		Profiles:   map[string]Profile{},
		Dimensions: map[string]Dimension{},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return set, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profiles: read %s: %w", path, err)
	}

	if err := hjson.Unmarshal(content, set); err != nil {
		return nil, fmt.Errorf("profiles: parse %s: %w", path, err)
	}

	if set.Profiles == nil {
		set.Profiles = map[string]Profile{}
	}
	if set.Dimensions == nil {
		set.Dimensions = map[string]Dimension{}
	}

	return set, nil
}

// ApplyFunc is anything that can accept compile/link flags and a profile
// name, matching unit.Unit.ApplyProfile's signature so callers don't need
// to import unit to use this package.
type ApplyFunc func(name string, compileFlags, linkFlags []string)

// Resolve interprets a single CLI token against the loaded Set: first as a
// bare profile name, then as a dimension selector of the form
// "dimension/choice[/choice...]" or a bare slash-joined multi-dimension
// selector ("release/asan_on"). It calls apply once per flags it resolves
// and reports whether the token was understood at all.
func (s *Set) Resolve(token string, apply ApplyFunc) bool {
	if profile, ok := s.Profiles[token]; ok {
		apply(token, profile.CompileFlags, profile.LinkFlags)
		return true
	}

	resolved := false
	for _, choice := range strings.Split(token, "/") {
		if dim, profile, ok := s.lookupChoice(choice); ok {
			apply(dim+"/"+choice, profile.CompileFlags, profile.LinkFlags)
			resolved = true
		}
	}
	if !resolved {
		log.Warningf("unknown profile or dimension selector: %s", logFriendly(token))
	}
	return resolved
}

// lookupChoice finds which dimension (if any) contains choice as one of
// its mutually exclusive profiles.
func (s *Set) lookupChoice(choice string) (dimension string, profile Profile, ok bool) {
	for name, dim := range s.Dimensions {
		if p, found := dim[choice]; found {
			return name, p, true
		}
	}
	return "", Profile{}, false
}

// logFriendly splits a camelCase or slash-joined token into
// space-separated words for a more readable warning line.
func logFriendly(token string) string {
	return strings.Join(camelcase.Split(strings.ReplaceAll(token, "/", " ")), " ")
}
