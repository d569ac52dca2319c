package resolution

import (
	"fmt"
	"strings"

	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/callgraph/registry"
)

// Target is a resolved call destination.
type Target struct {
	ID   core.FunctionID
	Node *core.FunctionNode
	Kind core.EdgeKind
}

// Resolver maps syntactic call sites to concrete function identities. It
// owns the lazy parse cache for the duration of one graph build.
type Resolver struct {
	cache           *ParseCache
	modules         *registry.ModuleResolver
	includeExternal bool
	diag            core.DiagnosticSink
}

// NewResolver wires the resolver. diag receives resolution faults; pass
// core.NopSink{} to discard them.
func NewResolver(cache *ParseCache, modules *registry.ModuleResolver, includeExternal bool, diag core.DiagnosticSink) *Resolver {
	if diag == nil {
		diag = core.NopSink{}
	}
	return &Resolver{cache: cache, modules: modules, includeExternal: includeExternal, diag: diag}
}

// Files exposes the parse cache so the builder can locate functions by id.
func (r *Resolver) Files() *ParseCache { return r.cache }

// ResolveCall resolves one call site against the caller's parsed file and
// enclosing function. A false return means every strategy failed; the
// fault has been reported to the diagnostic sink and the site is dropped.
func (r *Resolver) ResolveCall(file *core.ParsedFile, caller *core.ParsedFunction, site core.CallSite) (Target, bool) {
	var target Target
	var ok bool
	switch site.Kind {
	case core.CallNamed:
		target, ok = r.resolveNamed(file, caller, site.Name, make(map[string]bool))
	case core.CallMember:
		target, ok = r.resolveMember(file, caller, site)
	}
	if !ok {
		r.diag.Emit(core.Diagnostic{
			Category: core.FaultResolution,
			FilePath: file.FilePath,
			Line:     site.Line,
			Caller:   caller.QualifiedName,
			Callee:   calleeToken(site),
			Message:  fmt.Sprintf("no strategy resolved %s", calleeToken(site)),
		})
	}
	return target, ok
}

func calleeToken(site core.CallSite) string {
	if site.Kind == core.CallMember {
		return site.Object + "." + site.Name
	}
	return site.Name
}

// resolveNamed resolves a bare-identifier call. Strategies in order: local
// function, import, DI default. seen guards the DI recursion.
func (r *Resolver) resolveNamed(file *core.ParsedFile, caller *core.ParsedFunction, name string, seen map[string]bool) (Target, bool) {
	if seen[name] {
		return Target{}, false
	}
	seen[name] = true

	// Local function in the same file.
	if fn := file.FunctionByName(name); fn != nil {
		return r.makeTarget(file, fn, core.EdgeDirect), true
	}

	// Imported binding. An unresolvable non-local module upgrades to an
	// external descriptor when the option is active; a resolved module
	// whose export is missing stays a resolution fault.
	if imp, ok := file.ImportForLocal(name); ok {
		if path, ok := r.modules.Resolve(imp.Module, file.FilePath); ok {
			if dest, ok := r.cache.Get(path); ok {
				if t, ok := r.findExportTarget(dest, imp.Imported); ok {
					return t, true
				}
			}
		} else if t, ok := r.external(imp.Module, imp.Imported); ok {
			return t, true
		}
	}

	// DI default: an object-literal parameter default that injects the
	// callee under this property key. The local reference must differ from
	// the call's identifier or the recursion would be trivial.
	for _, m := range caller.DIDefaults {
		if m.Prop == name && m.LocalRef != "" && m.LocalRef != name {
			if t, ok := r.resolveNamed(file, caller, m.LocalRef, seen); ok {
				t.Kind = core.EdgeDIDefault
				return t, true
			}
		}
	}
	return Target{}, false
}

// resolveMember resolves `object.property()` calls. Strategy order: DI
// default, namespace import, imported identifier, instance binding, local
// class, constructor field indirection, object-literal binding.
func (r *Resolver) resolveMember(file *core.ParsedFile, caller *core.ParsedFunction, site core.CallSite) (Target, bool) {
	object, property := site.Object, site.Name

	// DI default matched on (parameter, property).
	for _, m := range caller.DIDefaults {
		if m.Param == object && m.Prop == property {
			if t, ok := r.followDIMapping(file, caller, m); ok {
				return t, true
			}
		}
	}

	// Namespace import: ns.fn().
	if imp, ok := file.NamespaceImportFor(object); ok {
		if path, ok := r.modules.Resolve(imp.Module, file.FilePath); ok {
			if dest, ok := r.cache.Get(path); ok {
				if t, ok := r.findExportTarget(dest, property); ok {
					return t, true
				}
			}
		}
		if t, ok := r.external(imp.Module, property); ok {
			return t, true
		}
	}

	// Imported identifier: a class or module-ish default export.
	if imp, ok := file.ImportForLocal(object); ok {
		if path, ok := r.modules.Resolve(imp.Module, file.FilePath); ok {
			if dest, ok := r.cache.Get(path); ok {
				if t, ok := r.findClassMemberTarget(dest, imp.Imported, property); ok {
					t.Kind = core.EdgeStaticMethod
					return t, true
				}
				if t, ok := r.findExportTarget(dest, property); ok {
					return t, true
				}
			}
		}
		if t, ok := r.external(imp.Module, imp.Imported+"."+property); ok {
			return t, true
		}
	}

	// Instance binding from an earlier `x = new ClassName()`.
	if className, ok := file.InstanceOf[object]; ok {
		if t, ok := r.resolveClassMethod(file, className, property); ok {
			t.Kind = core.EdgeInstanceMethod
			return t, true
		}
	}

	// Local class (or facade emitted as functions) in the same file.
	if fn := file.FunctionByName(object + "." + property); fn != nil {
		return r.makeTarget(file, fn, core.EdgeStaticMethod), true
	}

	// Constructor field indirection: a self-reference call on a field the
	// constructor plumbed in via DI.
	if object == enclosingClass(caller.QualifiedName) {
		if t, ok := r.resolveConstructorField(file, object, property); ok {
			return t, true
		}
	}

	// Object-literal binding to a different function in the same file.
	key := object + "." + property
	if bound, ok := file.ObjectBindings[key]; ok && bound != key {
		if fn := file.FunctionByName(bound); fn != nil {
			return r.makeTarget(file, fn, core.EdgeStaticMethod), true
		}
	}

	return Target{}, false
}

// resolveClassMethod finds ClassName.property through an import of the
// class or as a same-file member.
func (r *Resolver) resolveClassMethod(file *core.ParsedFile, className, property string) (Target, bool) {
	if imp, ok := file.ImportForLocal(className); ok {
		if path, ok := r.modules.Resolve(imp.Module, file.FilePath); ok {
			if dest, ok := r.cache.Get(path); ok {
				if t, ok := r.findClassMemberTarget(dest, imp.Imported, property); ok {
					return t, true
				}
			}
		}
	}
	if fn := file.FunctionByName(className + "." + property); fn != nil {
		return r.makeTarget(file, fn, core.EdgeStaticMethod), true
	}
	return Target{}, false
}

// resolveConstructorField follows `this._f()` where `_f` was assigned in
// the constructor from a DI parameter or a local reference.
func (r *Resolver) resolveConstructorField(file *core.ParsedFile, className, field string) (Target, bool) {
	ctor := file.FunctionByName(className + "." + core.ConstructorName)
	if ctor == nil {
		return Target{}, false
	}
	for _, fa := range ctor.FieldAssignments {
		if fa.Field != field {
			continue
		}
		if fa.Param != "" {
			// this.f = deps.streamText: the matching DI default on the
			// constructor names the injected function.
			for _, m := range ctor.DIDefaults {
				if m.Param == fa.Param && m.Prop == fa.Prop {
					if t, ok := r.followDIMapping(file, ctor, m); ok {
						return t, true
					}
				}
			}
			continue
		}
		if fa.LocalRef != "" {
			if t, ok := r.resolveNamed(file, ctor, fa.LocalRef, make(map[string]bool)); ok {
				t.Kind = core.EdgeDIDefault
				return t, true
			}
		}
	}
	return Target{}, false
}

// followDIMapping resolves one DI default mapping: either a local
// reference resolved as a named call, or an (object, method) pair resolved
// through an import as a class method then a plain export.
func (r *Resolver) followDIMapping(file *core.ParsedFile, caller *core.ParsedFunction, m core.DIDefaultMapping) (Target, bool) {
	if m.LocalRef != "" {
		if t, ok := r.resolveNamed(file, caller, m.LocalRef, make(map[string]bool)); ok {
			t.Kind = core.EdgeDIDefault
			return t, true
		}
		return Target{}, false
	}
	if imp, ok := file.ImportForLocal(m.ObjectRef); ok {
		if path, ok := r.modules.Resolve(imp.Module, file.FilePath); ok {
			if dest, ok := r.cache.Get(path); ok {
				if t, ok := r.findClassMemberTarget(dest, imp.Imported, m.MethodRef); ok {
					t.Kind = core.EdgeDIDefault
					return t, true
				}
				if t, ok := r.findExportTarget(dest, m.MethodRef); ok {
					t.Kind = core.EdgeDIDefault
					return t, true
				}
			}
		}
	}
	if fn := file.FunctionByName(m.ObjectRef + "." + m.MethodRef); fn != nil {
		return r.makeTarget(file, fn, core.EdgeDIDefault), true
	}
	return Target{}, false
}

// external synthesizes a leaf descriptor for an unresolved non-local
// specifier when the external option is active.
func (r *Resolver) external(specifier, importedName string) (Target, bool) {
	if !r.includeExternal || registry.IsRelative(specifier) {
		return Target{}, false
	}
	id := core.ExternalID(specifier, importedName)
	return Target{
		ID:   id,
		Node: &core.FunctionNode{ID: id, IsExternal: true},
		Kind: core.EdgeExternal,
	}, true
}

// makeTarget builds the node for a resolved function. Direct edges into
// instrumented functions are relabeled as instrument-wrapper edges so the
// wrapper shows up in the rendered graph.
func (r *Resolver) makeTarget(file *core.ParsedFile, fn *core.ParsedFunction, kind core.EdgeKind) Target {
	if kind == core.EdgeDirect && fn.IsInstrumented {
		kind = core.EdgeInstrumentWrapper
	}
	node := NodeFor(file, fn)
	return Target{ID: node.ID, Node: node, Kind: kind}
}

// NodeFor builds the graph node for a parsed function. The builder uses it
// for traversal roots; resolved targets go through the same constructor so
// a function always maps to a structurally equal node.
func NodeFor(file *core.ParsedFile, fn *core.ParsedFunction) *core.FunctionNode {
	return &core.FunctionNode{
		ID:             core.FunctionID{FilePath: file.FilePath, QualifiedName: fn.QualifiedName},
		StartLine:      fn.StartLine,
		EndLine:        fn.EndLine,
		IsInstrumented: fn.IsInstrumented,
		Description:    fn.Description,
		Signature:      fn.Signature,
	}
}

func enclosingClass(qualifiedName string) string {
	if i := strings.IndexByte(qualifiedName, '.'); i >= 0 {
		return qualifiedName[:i]
	}
	return ""
}
