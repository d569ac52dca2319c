// Package selector parses the function selector syntax the CLI accepts:
//
//	path/to/file             every function in the file
//	path/to/file::name       one function
//	path/to/file::a|b|C.m    pipe-separated qualified names
//
// Paths resolve against the repository root.
package selector

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/calltrace/callpath/callgraph/core"
)

// Selection is one parsed selector.
type Selection struct {
	FilePath string
	// Names empty means every function in the file.
	Names []string
}

// Parse splits a selector argument and resolves its path against the
// repository root.
func Parse(arg, repoRoot string) (Selection, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Selection{}, errors.New("empty selector")
	}
	path := arg
	var names []string
	if at := strings.Index(arg, "::"); at >= 0 {
		path = arg[:at]
		for _, name := range strings.Split(arg[at+2:], "|") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			return Selection{}, errors.New("selector names empty after '::'")
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	return Selection{FilePath: filepath.Clean(path), Names: names}, nil
}

// IDs expands the selection against the parsed file. With no names, every
// declared function is selected except the synthetic module scope.
func (s Selection) IDs(file *core.ParsedFile) []core.FunctionID {
	var ids []core.FunctionID
	if len(s.Names) == 0 {
		for _, fn := range file.Functions {
			if fn.QualifiedName == core.ModuleScope {
				continue
			}
			ids = append(ids, core.FunctionID{FilePath: file.FilePath, QualifiedName: fn.QualifiedName})
		}
		return ids
	}
	for _, name := range s.Names {
		ids = append(ids, core.FunctionID{FilePath: file.FilePath, QualifiedName: name})
	}
	return ids
}
