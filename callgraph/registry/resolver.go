package registry

import (
	"os"
	"path/filepath"
	"strings"
)

// sourceExtensions are probed in order when a specifier omits the
// extension, then again for directory index files.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// ModuleResolver maps module specifiers from a requesting file to concrete
// file paths inside the project.
type ModuleResolver struct {
	root     string
	settings CompilerSettings
}

// NewModuleResolver builds a resolver for the project rooted at root.
func NewModuleResolver(root string, settings CompilerSettings) *ModuleResolver {
	if settings.BaseDir == "" {
		settings.BaseDir = root
	}
	return &ModuleResolver{root: root, settings: settings}
}

// IsRelative reports whether the specifier is relative or absolute, i.e.
// can never denote a third-party package.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".." ||
		filepath.IsAbs(specifier)
}

// Resolve maps a specifier to an absolute file path, or reports failure.
//
// Order: project configuration first (path aliases, then the base
// directory, then a package install lookup that only admits monorepo
// workspace links pointing back into the project); then plain relative
// probing with the source extensions and index files.
func (r *ModuleResolver) Resolve(specifier, fromFile string) (string, bool) {
	if path, ok := r.resolveWithSettings(specifier, fromFile); ok {
		return path, true
	}
	if IsRelative(specifier) {
		base := specifier
		if !filepath.IsAbs(base) {
			base = filepath.Join(filepath.Dir(fromFile), specifier)
		}
		if path, ok := probeModule(base); ok {
			return path, true
		}
	}
	return "", false
}

func (r *ModuleResolver) resolveWithSettings(specifier, fromFile string) (string, bool) {
	if IsRelative(specifier) {
		return "", false
	}
	for pattern, targets := range r.settings.Paths {
		stem, ok := matchAliasPattern(pattern, specifier)
		if !ok {
			continue
		}
		for _, target := range targets {
			candidate := strings.Replace(target, "*", stem, 1)
			if !filepath.IsAbs(candidate) {
				candidate = filepath.Join(r.settings.BaseDir, candidate)
			}
			if path, ok := probeModule(candidate); ok {
				return path, true
			}
		}
	}
	if path, ok := probeModule(filepath.Join(r.settings.BaseDir, specifier)); ok {
		return path, true
	}
	return r.resolveWorkspaceLink(specifier, fromFile)
}

// resolveWorkspaceLink looks a bare specifier up in the package install
// tree. A hit is rejected as an external library unless it resolves,
// through symbolic links, to a file inside the project tree but outside
// any install directory. That shape is a monorepo workspace link.
func (r *ModuleResolver) resolveWorkspaceLink(specifier, fromFile string) (string, bool) {
	for dir := filepath.Dir(fromFile); strings.HasPrefix(dir, r.root); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "node_modules", specifier)
		path, ok := probeModule(candidate)
		if !ok {
			// A package's entry point may also be its directory; probe the
			// conventional source entry.
			path, ok = probeModule(filepath.Join(candidate, "src", "index"))
		}
		if !ok {
			if dir == r.root {
				break
			}
			continue
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", false
		}
		if strings.HasPrefix(real, r.root+string(filepath.Separator)) &&
			!strings.Contains(real, string(filepath.Separator)+"node_modules"+string(filepath.Separator)) {
			return real, true
		}
		return "", false
	}
	return "", false
}

// matchAliasPattern matches a specifier against a tsconfig paths pattern
// with at most one '*' and returns the text the star captured.
func matchAliasPattern(pattern, specifier string) (string, bool) {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		if pattern == specifier {
			return "", true
		}
		return "", false
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	if len(specifier) < len(prefix)+len(suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// probeModule tries the path as given, with each source extension appended,
// and as a directory with index files.
func probeModule(base string) (string, bool) {
	if isFile(base) {
		return base, true
	}
	for _, ext := range sourceExtensions {
		if candidate := base + ext; isFile(candidate) {
			return candidate, true
		}
	}
	for _, ext := range sourceExtensions {
		if candidate := filepath.Join(base, "index"+ext); isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
