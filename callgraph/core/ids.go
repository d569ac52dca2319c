package core

import "strings"

// ExternalPrefix marks the file component of identities that stand in for
// imports from third-party packages. The module specifier follows the prefix.
const ExternalPrefix = "<external>::"

// ModuleScope is the qualified name of the synthetic function representing a
// file's top-level statements.
const ModuleScope = "<module>"

// DefaultExport is the sentinel used both as an imported name and as a key in
// ParsedFile.ExportedNames for default exports.
const DefaultExport = "default"

// NamespaceImport is the sentinel imported name for `import * as ns` clauses.
const NamespaceImport = "*"

// FunctionID is the total identifier for a function-like entity: the pair of
// absolute file path and qualified name. IDs are comparable and usable as map
// keys; graphs are keyed by them rather than by any parse-tree reference.
type FunctionID struct {
	FilePath      string
	QualifiedName string
}

// ExternalID builds the identity of an unresolved import from a third-party
// package. The qualified name is the imported name, possibly dotted.
func ExternalID(specifier, importedName string) FunctionID {
	return FunctionID{
		FilePath:      ExternalPrefix + specifier,
		QualifiedName: importedName,
	}
}

// IsExternal reports whether the id denotes a third-party import rather than
// a function inside the project tree.
func (id FunctionID) IsExternal() bool {
	return strings.HasPrefix(id.FilePath, ExternalPrefix)
}

// String renders the id in the `path::name` form used by selectors and logs.
func (id FunctionID) String() string {
	return id.FilePath + "::" + id.QualifiedName
}
