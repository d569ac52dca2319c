package resolution

import (
	"github.com/calltrace/callpath/callgraph/core"
)

// exportKey guards re-export chasing against cycles: pathological
// `a.ts → b.ts → a.ts` chains terminate once a (file, name) pair repeats.
type exportKey struct {
	file string
	name string
}

// findExportTarget locates the function a file exports under the wanted
// name, following re-export chains. A lookup that crossed at least one
// re-export yields a re-export edge.
func (r *Resolver) findExportTarget(file *core.ParsedFile, name string) (Target, bool) {
	destFile, fn, viaReExport := r.findExport(file, name, make(map[exportKey]bool))
	if fn == nil {
		return Target{}, false
	}
	kind := core.EdgeDirect
	if viaReExport {
		kind = core.EdgeReExport
	}
	return r.makeTarget(destFile, fn, kind), true
}

// findExport resolves an exported name to its defining file and function.
//
// Order: named re-exports first, then the file's own export table, then
// wildcard re-exports as a last resort (the `export * from` open question
// is resolved in favor of following the star).
func (r *Resolver) findExport(file *core.ParsedFile, name string, visited map[exportKey]bool) (*core.ParsedFile, *core.ParsedFunction, bool) {
	key := exportKey{file: file.FilePath, name: name}
	if visited[key] {
		return nil, nil, false
	}
	visited[key] = true

	for _, re := range file.ReExports {
		if re.Exported != name {
			continue
		}
		if next, ok := r.openModule(file, re.Module); ok {
			if destFile, fn, _ := r.findExport(next, re.Imported, visited); fn != nil {
				return destFile, fn, true
			}
		}
	}

	if local, ok := file.ExportedNames[name]; ok {
		if fn := file.FunctionByName(local); fn != nil {
			return file, fn, false
		}
	}

	for _, re := range file.ReExports {
		if re.Exported != core.NamespaceImport {
			continue
		}
		if next, ok := r.openModule(file, re.Module); ok {
			if destFile, fn, _ := r.findExport(next, name, visited); fn != nil {
				return destFile, fn, true
			}
		}
	}

	return nil, nil, false
}

// findClassMemberTarget locates `<export>.<member>` in a file: the export
// is chased through re-exports to its defining file, then the member is
// looked up as a class method, falling back to the facade bindings in case
// the exported name denotes an object facade rather than a class.
func (r *Resolver) findClassMemberTarget(file *core.ParsedFile, exportedName, member string) (Target, bool) {
	destFile, local, ok := r.chaseExportedName(file, exportedName, make(map[exportKey]bool))
	if !ok {
		return Target{}, false
	}
	qualified := local + "." + member
	if fn := destFile.FunctionByName(qualified); fn != nil {
		return r.makeTarget(destFile, fn, core.EdgeStaticMethod), true
	}
	if bound, ok := destFile.ObjectBindings[qualified]; ok {
		if fn := destFile.FunctionByName(bound); fn != nil {
			return r.makeTarget(destFile, fn, core.EdgeStaticMethod), true
		}
	}
	return Target{}, false
}

// chaseExportedName follows re-export chains until it lands on the file
// that declares the export locally, returning that file and the local
// name.
func (r *Resolver) chaseExportedName(file *core.ParsedFile, name string, visited map[exportKey]bool) (*core.ParsedFile, string, bool) {
	key := exportKey{file: file.FilePath, name: name}
	if visited[key] {
		return nil, "", false
	}
	visited[key] = true

	for _, re := range file.ReExports {
		if re.Exported != name {
			continue
		}
		if next, ok := r.openModule(file, re.Module); ok {
			if destFile, local, ok := r.chaseExportedName(next, re.Imported, visited); ok {
				return destFile, local, true
			}
		}
	}

	if local, ok := file.ExportedNames[name]; ok {
		return file, local, true
	}

	for _, re := range file.ReExports {
		if re.Exported != core.NamespaceImport {
			continue
		}
		if next, ok := r.openModule(file, re.Module); ok {
			if destFile, local, ok := r.chaseExportedName(next, name, visited); ok {
				return destFile, local, true
			}
		}
	}

	return nil, "", false
}

func (r *Resolver) openModule(from *core.ParsedFile, specifier string) (*core.ParsedFile, bool) {
	path, ok := r.modules.Resolve(specifier, from.FilePath)
	if !ok {
		return nil, false
	}
	return r.cache.Get(path)
}
