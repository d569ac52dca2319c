package extraction

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/calltrace/callpath/callgraph/core"
)

// stringContent strips the quotes off a string literal node.
func (w *fileWalker) stringContent(n *sitter.Node) string {
	return strings.Trim(w.text(n), "'\"`")
}

// hasToken checks the anonymous children for a literal token.
func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

// walkImport records one ES import statement. Type-only imports bind
// nothing callable and are skipped.
func (w *fileWalker) walkImport(node *sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	module := w.stringContent(source)

	var clause *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "type" {
			return
		}
		if child.Type() == "import_clause" {
			clause = child
		}
	}
	if clause == nil {
		// Side-effect import: nothing to bind.
		return
	}

	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "identifier":
			w.file.Imports = append(w.file.Imports, core.ImportInfo{
				Local: w.text(child), Imported: core.DefaultExport, Module: module,
			})
		case "namespace_import":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "identifier" {
					w.file.Imports = append(w.file.Imports, core.ImportInfo{
						Local: w.text(gc), Imported: core.NamespaceImport,
						Module: module, IsNamespace: true,
					})
				}
			}
		case "named_imports":
			w.walkNamedImports(child, module)
		}
	}
}

func (w *fileWalker) walkNamedImports(namedImports *sitter.Node, module string) {
	for i := 0; i < int(namedImports.NamedChildCount()); i++ {
		spec := namedImports.NamedChild(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		if hasToken(spec, "type") {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		imported := w.text(nameNode)
		local := imported
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = w.text(alias)
		}
		w.file.Imports = append(w.file.Imports, core.ImportInfo{
			Local: local, Imported: imported, Module: module,
		})
	}
}

// walkExport handles export statements: exported declarations, default
// exports (including anonymous default facades), local export clauses, and
// re-exports from other modules.
func (w *fileWalker) walkExport(node *sitter.Node) {
	if hasToken(node, "type") {
		return
	}
	source := node.ChildByFieldName("source")
	if source != nil {
		w.walkReExport(node, w.stringContent(source))
		return
	}

	isDefault := hasToken(node, "default")

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		w.walkExportedDeclaration(decl, isDefault)
		return
	}
	if value := node.ChildByFieldName("value"); value != nil {
		w.walkDefaultExportedValue(value)
		return
	}

	// export { a, b as c } without a module specifier.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			local := w.text(nameNode)
			exported := local
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = w.text(alias)
			}
			w.file.ExportedNames[exported] = local
		}
	}
}

func (w *fileWalker) walkExportedDeclaration(decl *sitter.Node, isDefault bool) {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		fn := w.declareFunction(decl)
		switch {
		case fn != nil:
			w.file.ExportedNames[fn.QualifiedName] = fn.QualifiedName
			if isDefault {
				w.file.ExportedNames[core.DefaultExport] = fn.QualifiedName
			}
		case isDefault:
			// Anonymous default function.
			w.emitFunction(core.DefaultExport, decl, decl, false)
			w.file.ExportedNames[core.DefaultExport] = core.DefaultExport
		}
	case "class_declaration", "abstract_class_declaration":
		name := w.declareClass(decl)
		if name != "" {
			w.file.ExportedNames[name] = name
			if isDefault {
				w.file.ExportedNames[core.DefaultExport] = name
			}
		}
	case "lexical_declaration", "variable_declaration":
		for _, name := range w.walkVariableDeclaration(decl) {
			w.file.ExportedNames[name] = name
		}
	}
}

// walkDefaultExportedValue handles `export default <expr>`.
func (w *fileWalker) walkDefaultExportedValue(value *sitter.Node) {
	switch {
	case value.Type() == "identifier":
		w.file.ExportedNames[core.DefaultExport] = w.text(value)
	case isFunctionLike(value):
		w.emitFunction(core.DefaultExport, value, value, false)
		w.file.ExportedNames[core.DefaultExport] = core.DefaultExport
	default:
		if obj := w.unwrapObjectLiteral(value); obj != nil {
			// Anonymous default facade, e.g. `export default
			// Object.freeze({ loadById, loadMany })`. The facade borrows
			// the default sentinel as its object name.
			w.declareFacade(core.DefaultExport, obj)
			w.file.ExportedNames[core.DefaultExport] = core.DefaultExport
		}
	}
}

// walkReExport records `export ... from 'mod'` clauses.
func (w *fileWalker) walkReExport(node *sitter.Node, module string) {
	recorded := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "export_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				imported := w.text(nameNode)
				exported := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					exported = w.text(alias)
				}
				w.file.ReExports = append(w.file.ReExports, core.ReExportInfo{
					Exported: exported, Imported: imported, Module: module,
				})
				w.file.ExportedNames[exported] = exported
				recorded = true
			}
		case "namespace_export":
			// export * as ns from 'mod'
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "identifier" {
					w.file.ReExports = append(w.file.ReExports, core.ReExportInfo{
						Exported: w.text(gc), Imported: core.NamespaceImport, Module: module,
					})
					w.file.ExportedNames[w.text(gc)] = w.text(gc)
					recorded = true
				}
			}
		}
	}
	if !recorded && hasToken(node, "*") {
		// export * from 'mod'
		w.file.ReExports = append(w.file.ReExports, core.ReExportInfo{
			Exported: core.NamespaceImport, Imported: core.NamespaceImport, Module: module,
		})
	}
}
