package extraction

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/calltrace/callpath/callgraph/core"
)

// parameterNodes returns the parameter list entries of a function-like
// node. Arrow functions with a bare single parameter expose it under the
// "parameter" field instead of a formal_parameters list.
func parameterNodes(fnNode *sitter.Node) []*sitter.Node {
	if params := fnNode.ChildByFieldName("parameters"); params != nil {
		out := make([]*sitter.Node, 0, params.NamedChildCount())
		for i := 0; i < int(params.NamedChildCount()); i++ {
			out = append(out, params.NamedChild(i))
		}
		return out
	}
	if single := fnNode.ChildByFieldName("parameter"); single != nil {
		return []*sitter.Node{single}
	}
	return nil
}

// parameterParts splits one parameter entry into its name identifier and
// default value, covering both the TypeScript grammar
// (required_parameter/optional_parameter with pattern+value fields) and the
// JavaScript grammar (identifier or assignment_pattern).
func parameterParts(param *sitter.Node) (nameNode, defaultValue *sitter.Node) {
	switch param.Type() {
	case "required_parameter", "optional_parameter":
		pattern := param.ChildByFieldName("pattern")
		if pattern != nil && pattern.Type() == "identifier" {
			nameNode = pattern
		}
		defaultValue = param.ChildByFieldName("value")
	case "assignment_pattern":
		left := param.ChildByFieldName("left")
		if left != nil && left.Type() == "identifier" {
			nameNode = left
		}
		defaultValue = param.ChildByFieldName("right")
	case "identifier":
		nameNode = param
	}
	return nameNode, defaultValue
}

// diDefaults extracts dependency-injection mappings from object-literal
// parameter defaults: `f(deps = { save, log: console.log })`. Property
// values that are neither identifiers nor one-level property accesses are
// ignored.
func (w *fileWalker) diDefaults(fnNode *sitter.Node) []core.DIDefaultMapping {
	var mappings []core.DIDefaultMapping
	for _, param := range parameterNodes(fnNode) {
		nameNode, value := parameterParts(param)
		if nameNode == nil || value == nil || value.Type() != "object" {
			continue
		}
		paramName := w.text(nameNode)
		for i := 0; i < int(value.NamedChildCount()); i++ {
			entry := value.NamedChild(i)
			switch entry.Type() {
			case "shorthand_property_identifier":
				name := w.text(entry)
				mappings = append(mappings, core.DIDefaultMapping{
					Param: paramName, Prop: name, LocalRef: name,
				})
			case "pair":
				key := entry.ChildByFieldName("key")
				val := entry.ChildByFieldName("value")
				if key == nil || val == nil || key.Type() != "property_identifier" {
					continue
				}
				switch val.Type() {
				case "identifier":
					mappings = append(mappings, core.DIDefaultMapping{
						Param: paramName, Prop: w.text(key), LocalRef: w.text(val),
					})
				case "member_expression":
					obj := val.ChildByFieldName("object")
					prop := val.ChildByFieldName("property")
					if obj != nil && prop != nil && obj.Type() == "identifier" {
						mappings = append(mappings, core.DIDefaultMapping{
							Param: paramName, Prop: w.text(key),
							ObjectRef: w.text(obj), MethodRef: w.text(prop),
						})
					}
				}
			}
		}
	}
	return mappings
}

// fieldAssignments extracts `this.field = ...` plumbing from a constructor.
// Only two right-hand shapes are recorded: a property access on a parameter
// and a bare identifier; everything else is ignored.
func (w *fileWalker) fieldAssignments(ctorNode *sitter.Node) []core.FieldAssignment {
	body := ctorNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	params := make(map[string]bool)
	for _, param := range parameterNodes(ctorNode) {
		if nameNode, _ := parameterParts(param); nameNode != nil {
			params[w.text(nameNode)] = true
		}
	}

	var assignments []core.FieldAssignment
	w.scanFieldAssignments(body, params, &assignments)
	return assignments
}

func (w *fileWalker) scanFieldAssignments(node *sitter.Node, params map[string]bool, out *[]core.FieldAssignment) {
	if node == nil {
		return
	}
	if isFunctionLike(node) || node.Type() == "class_declaration" || node.Type() == "function_declaration" {
		return
	}
	if node.Type() == "assignment_expression" {
		if fa, ok := w.fieldAssignmentOf(node, params); ok {
			*out = append(*out, fa)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.scanFieldAssignments(node.Child(i), params, out)
	}
}

func (w *fileWalker) fieldAssignmentOf(assign *sitter.Node, params map[string]bool) (core.FieldAssignment, bool) {
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "member_expression" {
		return core.FieldAssignment{}, false
	}
	obj := left.ChildByFieldName("object")
	prop := left.ChildByFieldName("property")
	if obj == nil || prop == nil || obj.Type() != "this" {
		return core.FieldAssignment{}, false
	}
	field := w.text(prop)

	switch right.Type() {
	case "member_expression":
		rObj := right.ChildByFieldName("object")
		rProp := right.ChildByFieldName("property")
		if rObj != nil && rProp != nil && rObj.Type() == "identifier" && params[w.text(rObj)] {
			return core.FieldAssignment{Field: field, Param: w.text(rObj), Prop: w.text(rProp)}, true
		}
	case "identifier":
		return core.FieldAssignment{Field: field, LocalRef: w.text(right)}, true
	}
	return core.FieldAssignment{}, false
}
