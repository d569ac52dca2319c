package core

import "strings"

// DIDefaultMapping is one property of an object-literal parameter default:
// `f(deps = { log: console.log, save })`. Exactly one of LocalRef or the
// (ObjectRef, MethodRef) pair is populated.
type DIDefaultMapping struct {
	Param     string // parameter name
	Prop      string // property key inside the default object
	LocalRef  string // value was a bare identifier
	ObjectRef string // value was a property access: object part
	MethodRef string // value was a property access: member part
}

// FieldAssignment is one `self.field = ...` statement inside a constructor
// body. For `self.f = deps.streamText` the (Param, Prop) pair is set; for
// `self.f = streamText` only LocalRef is. Other right-hand sides are not
// recorded.
type FieldAssignment struct {
	Field    string
	Param    string
	Prop     string
	LocalRef string
}

// ParsedFunction is the parser's record of one function-like declaration.
type ParsedFunction struct {
	QualifiedName  string
	StartLine      uint32
	EndLine        uint32
	IsInstrumented bool
	CallSites      []CallSite
	DIDefaults     []DIDefaultMapping
	// FieldAssignments is populated only on constructors.
	FieldAssignments []FieldAssignment
	Description      string
	Signature        string
}

// ImportInfo records one imported binding. Imported is the concrete exported
// identifier, DefaultExport, or NamespaceImport.
type ImportInfo struct {
	Local       string
	Imported    string
	Module      string
	IsNamespace bool
}

// ReExportInfo records one `export ... from 'mod'` clause. Wildcard
// re-exports use NamespaceImport for both name fields.
type ReExportInfo struct {
	Exported string
	Imported string
	Module   string
}

// ParsedFile is the complete syntactic model of one source file.
type ParsedFile struct {
	FilePath  string
	Functions []*ParsedFunction
	Imports   []ImportInfo
	ReExports []ReExportInfo
	// ExportedNames maps exported name to local name. Default exports use
	// DefaultExport as the key.
	ExportedNames map[string]string
	// ObjectBindings maps an object-literal member qualified name (Obj.prop)
	// to the qualified name of the function the property references.
	ObjectBindings map[string]string
	// InstanceOf maps a variable name to a class name for file-level
	// `x = new ClassName(...)` bindings.
	InstanceOf map[string]string
}

// NewParsedFile returns an empty model for the given path.
func NewParsedFile(filePath string) *ParsedFile {
	return &ParsedFile{
		FilePath:       filePath,
		ExportedNames:  make(map[string]string),
		ObjectBindings: make(map[string]string),
		InstanceOf:     make(map[string]string),
	}
}

// FunctionByName returns the function with the given qualified name.
func (f *ParsedFile) FunctionByName(qualifiedName string) *ParsedFunction {
	for _, fn := range f.Functions {
		if fn.QualifiedName == qualifiedName {
			return fn
		}
	}
	return nil
}

// ImportForLocal returns the non-namespace import bound to the given local
// name.
func (f *ParsedFile) ImportForLocal(local string) (ImportInfo, bool) {
	for _, imp := range f.Imports {
		if !imp.IsNamespace && imp.Local == local {
			return imp, true
		}
	}
	return ImportInfo{}, false
}

// NamespaceImportFor returns the namespace import bound to the given local
// name.
func (f *ParsedFile) NamespaceImportFor(local string) (ImportInfo, bool) {
	for _, imp := range f.Imports {
		if imp.IsNamespace && imp.Local == local {
			return imp, true
		}
	}
	return ImportInfo{}, false
}

// ClassMembers returns the functions whose qualified name is a member of the
// given class or facade object name.
func (f *ParsedFile) ClassMembers(className string) []*ParsedFunction {
	prefix := className + "."
	var members []*ParsedFunction
	for _, fn := range f.Functions {
		if strings.HasPrefix(fn.QualifiedName, prefix) {
			members = append(members, fn)
		}
	}
	return members
}
