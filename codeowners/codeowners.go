// Package codeowners loads a CODEOWNERS file into the path-to-owners
// mapping the layout and render layers consume.
package codeowners

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// conventional locations, probed in order.
var locations = []string{
	"CODEOWNERS",
	".github/CODEOWNERS",
	"docs/CODEOWNERS",
}

type rule struct {
	pattern string
	owners  []string
}

// RuleSet is an ordered CODEOWNERS rule list. The last matching rule wins,
// as in the upstream format.
type RuleSet struct {
	rules []rule
}

// Load reads the repository's CODEOWNERS file from its conventional
// locations. A missing file yields an empty, usable rule set.
func Load(repoRoot string) (*RuleSet, error) {
	for _, loc := range locations {
		path := filepath.Join(repoRoot, loc)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		return parse(f)
	}
	return &RuleSet{}, nil
}

func parse(f *os.File) (*RuleSet, error) {
	set := &RuleSet{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		owners := make([]string, 0, len(fields)-1)
		for _, raw := range fields[1:] {
			owners = append(owners, shortName(raw))
		}
		set.rules = append(set.rules, rule{pattern: fields[0], owners: owners})
	}
	return set, scanner.Err()
}

// shortName reduces an owner token to its display form: `@org/team-name`
// becomes `team-name`, `@user` becomes `user`, emails keep their local
// part.
func shortName(raw string) string {
	raw = strings.TrimPrefix(raw, "@")
	if i := strings.LastIndexByte(raw, '/'); i >= 0 {
		return raw[i+1:]
	}
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// OwnersFor returns the owners of a repository-relative path, or nil.
func (s *RuleSet) OwnersFor(relPath string) []string {
	relPath = filepath.ToSlash(relPath)
	var owners []string
	for _, r := range s.rules {
		if matches(r.pattern, relPath) {
			owners = r.owners
		}
	}
	return owners
}

// Mapping builds the path-to-owners map for a set of paths, omitting
// unowned entries.
func (s *RuleSet) Mapping(relPaths []string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range relPaths {
		if owners := s.OwnersFor(p); len(owners) != 0 {
			out[p] = owners
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// matches implements the subset of CODEOWNERS globbing the format sees in
// practice: a bare directory prefix, a leading slash anchor, `*`
// wildcards within one segment, and `**` spanning segments.
func matches(pattern, path string) bool {
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "*" {
		return true
	}
	// Directory rule: everything under the prefix.
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(path, pattern)
	}
	if !strings.ContainsAny(pattern, "*?") {
		return path == pattern || strings.HasPrefix(path, pattern+"/")
	}
	return globMatch(pattern, path)
}

func globMatch(pattern, path string) bool {
	if i := strings.Index(pattern, "**"); i >= 0 {
		prefix, suffix := pattern[:i], pattern[i+2:]
		suffix = strings.TrimPrefix(suffix, "/")
		if !strings.HasPrefix(path, prefix) {
			return false
		}
		rest := path[len(prefix):]
		for j := 0; j <= len(rest); j++ {
			if j == 0 || j == len(rest) || rest[j-1] == '/' {
				if globMatch(suffix, rest[j:]) {
					return true
				}
			}
		}
		return false
	}
	ok, err := filepath.Match(pattern, path)
	return err == nil && ok
}
