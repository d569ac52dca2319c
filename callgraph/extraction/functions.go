package extraction

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/calltrace/callpath/callgraph/core"
)

// declareFunction emits a ParsedFunction for a named function declaration.
func (w *fileWalker) declareFunction(node *sitter.Node) *core.ParsedFunction {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return w.emitFunction(w.text(nameNode), node, node, false)
}

// emitFunction records one function-like entity. declNode spans the whole
// declaration (for line numbers and doc comments); fnNode is the node
// carrying parameters and body.
func (w *fileWalker) emitFunction(qualifiedName string, declNode, fnNode *sitter.Node, instrumented bool) *core.ParsedFunction {
	fn := &core.ParsedFunction{
		QualifiedName:  qualifiedName,
		StartLine:      line(declNode),
		EndLine:        endLine(declNode),
		IsInstrumented: instrumented,
		Description:    w.docComment(declNode),
	}
	if qualifiedName != core.ConstructorName && !isConstructorMember(qualifiedName) {
		fn.Signature = w.signature(fnNode)
	}
	fn.DIDefaults = w.diDefaults(fnNode)
	if body := functionBody(fnNode); body != nil {
		fn.CallSites = w.collectCalls(body, enclosingClassOf(qualifiedName, fnNode))
	}
	w.file.Functions = append(w.file.Functions, fn)
	return fn
}

// functionBody returns the body of a function-like node. Arrow functions
// with expression bodies return the expression itself.
func functionBody(fnNode *sitter.Node) *sitter.Node {
	if body := fnNode.ChildByFieldName("body"); body != nil {
		return body
	}
	return nil
}

// enclosingClassOf recovers the class name from a member qualified name so
// self-reference calls in the body rewrite to it. Plain functions have no
// enclosing class.
func enclosingClassOf(qualifiedName string, fnNode *sitter.Node) string {
	if fnNode == nil {
		return ""
	}
	for i := 0; i < len(qualifiedName); i++ {
		if qualifiedName[i] == '.' {
			return qualifiedName[:i]
		}
	}
	return ""
}

func isConstructorMember(qualifiedName string) bool {
	for i := len(qualifiedName) - 1; i >= 0; i-- {
		if qualifiedName[i] == '.' {
			return qualifiedName[i+1:] == core.ConstructorName
		}
	}
	return false
}

// walkVariableDeclaration handles `const x = ...` declarators: function
// values, instrumentation wrappers, facade objects, and instance bindings.
// It returns the names of declared functions and facades so export
// unwrapping can register them.
func (w *fileWalker) walkVariableDeclaration(node *sitter.Node) []string {
	var declared []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")
		if nameNode == nil || value == nil || nameNode.Type() != "identifier" {
			continue
		}
		name := w.text(nameNode)

		if isFunctionLike(value) {
			w.emitFunction(name, node, value, false)
			declared = append(declared, name)
			continue
		}
		if inner, ok := w.instrumentWrapperTarget(value); ok {
			w.emitFunction(name, node, inner, true)
			declared = append(declared, name)
			continue
		}
		if obj := w.unwrapObjectLiteral(value); obj != nil {
			w.declareFacade(name, obj)
			declared = append(declared, name)
			continue
		}
		if value.Type() == "new_expression" {
			w.recordInstanceBinding(name, value)
		}
	}
	return declared
}

// instrumentWrapperTarget matches `instrumentFn(..., fnExpr)` and
// `instrumentFn(fnExpr)` initializers and returns the wrapped function.
func (w *fileWalker) instrumentWrapperTarget(value *sitter.Node) (*sitter.Node, bool) {
	if value.Type() != "call_expression" {
		return nil, false
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || w.text(fn) != InstrumentWrapperName {
		return nil, false
	}
	args := value.ChildByFieldName("arguments")
	if args == nil {
		return nil, false
	}
	for i := int(args.NamedChildCount()) - 1; i >= 0; i-- {
		arg := args.NamedChild(i)
		if isFunctionLike(arg) {
			return arg, true
		}
	}
	return nil, false
}

// declareClass emits a ParsedFunction per member and records constructor
// plumbing. Returns the class name.
func (w *fileWalker) declareClass(node *sitter.Node) string {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return ""
	}
	className := w.text(nameNode)

	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			w.declareMethod(className, member)
		case "public_field_definition", "field_definition":
			w.declareFieldFunction(className, member)
		}
	}
	return className
}

// declareMethod emits one class method, accessor, or constructor.
func (w *fileWalker) declareMethod(className string, member *sitter.Node) {
	nameNode := member.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	memberName := w.text(nameNode)
	switch {
	case hasModifier(member, "get"):
		memberName = "get " + memberName
	case hasModifier(member, "set"):
		memberName = "set " + memberName
	}
	qualified := className + "." + memberName

	fn := w.emitFunction(qualified, member, member, false)
	if fn != nil && memberName == core.ConstructorName {
		fn.FieldAssignments = w.fieldAssignments(member)
	}
}

// declareFieldFunction emits a ParsedFunction for a property-declared
// function-valued field: `class A { run = () => ... }`.
func (w *fileWalker) declareFieldFunction(className string, member *sitter.Node) {
	nameNode := member.ChildByFieldName("name")
	value := member.ChildByFieldName("value")
	if nameNode == nil || value == nil || !isFunctionLike(value) {
		return
	}
	w.emitFunction(className+"."+w.text(nameNode), member, value, false)
}

// hasModifier checks the tokens preceding a class member's name for a
// keyword like "get", "set", or "static".
func hasModifier(member *sitter.Node, keyword string) bool {
	nameNode := member.ChildByFieldName("name")
	for i := 0; i < int(member.ChildCount()); i++ {
		child := member.Child(i)
		if nameNode != nil && child.StartByte() >= nameNode.StartByte() {
			break
		}
		if child.Type() == keyword {
			return true
		}
	}
	return false
}

// declareFacade records the property bindings of an object literal bound to
// a name, emitting ParsedFunctions for inline values and method shorthand.
// Spread entries and computed keys are ignored.
func (w *fileWalker) declareFacade(objName string, objLit *sitter.Node) {
	for i := 0; i < int(objLit.NamedChildCount()); i++ {
		entry := objLit.NamedChild(i)
		switch entry.Type() {
		case "shorthand_property_identifier":
			name := w.text(entry)
			w.file.ObjectBindings[objName+"."+name] = name
		case "pair":
			key := entry.ChildByFieldName("key")
			value := entry.ChildByFieldName("value")
			if key == nil || value == nil || key.Type() != "property_identifier" {
				continue
			}
			qualified := objName + "." + w.text(key)
			switch {
			case value.Type() == "identifier":
				w.file.ObjectBindings[qualified] = w.text(value)
			case isFunctionLike(value):
				w.emitFunction(qualified, entry, value, false)
				w.file.ObjectBindings[qualified] = qualified
			}
		case "method_definition":
			key := entry.ChildByFieldName("name")
			if key == nil || key.Type() != "property_identifier" {
				continue
			}
			qualified := objName + "." + w.text(key)
			w.emitFunction(qualified, entry, entry, false)
			w.file.ObjectBindings[qualified] = qualified
		}
	}
}
