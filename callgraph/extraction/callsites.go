package extraction

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/calltrace/callpath/callgraph/core"
)

// collectCalls walks a function body and records call sites in file order.
//
// Scope policy: nested function and class declarations are independent
// scopes and are not descended into. Function expressions and arrow
// functions that appear as arguments to a call are continuations of the
// enclosing body, so callbacks in `.map`, `.forEach`, and scheduler
// arguments contribute their calls to the enclosing function.
//
// enclosingClass, when non-empty, replaces the self-reference in
// `this.method()` calls so instance methods resolve without a type checker.
func (w *fileWalker) collectCalls(body *sitter.Node, enclosingClass string) []core.CallSite {
	c := &callCollector{walker: w, enclosingClass: enclosingClass}
	c.walk(body, false)
	return c.sites
}

type callCollector struct {
	walker         *fileWalker
	enclosingClass string
	sites          []core.CallSite
}

// walk visits a node. inCallArgs is true while the current subtree hangs
// off a call's argument list and has not yet crossed into a function value;
// it is what admits callback bodies into the enclosing scope.
func (c *callCollector) walk(node *sitter.Node, inCallArgs bool) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration", "generator_function_declaration",
		"class_declaration", "abstract_class_declaration", "class",
		"method_definition":
		// New scope: refuse.
		return

	case "arrow_function", "function_expression", "function", "generator_function":
		if !inCallArgs {
			return
		}
		// Callback argument: its body continues the enclosing scope.
		if body := node.ChildByFieldName("body"); body != nil {
			c.walk(body, false)
		}
		return

	case "call_expression":
		c.recordCall(node)
		if fn := node.ChildByFieldName("function"); fn != nil {
			c.walk(fn, false)
		}
		if args := node.ChildByFieldName("arguments"); args != nil {
			c.walkChildren(args, true)
		}
		return

	case "new_expression":
		c.recordConstruction(node)
		if args := node.ChildByFieldName("arguments"); args != nil {
			c.walkChildren(args, true)
		}
		return

	case "lexical_declaration", "variable_declaration":
		// Instance bindings made inside bodies still feed the file-level
		// map; the declarator values are walked for calls as usual.
		c.recordLocalInstanceBindings(node)
	}

	c.walkChildren(node, inCallArgs)
}

func (c *callCollector) walkChildren(node *sitter.Node, inCallArgs bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		c.walk(node.Child(i), inCallArgs)
	}
}

// recordCall classifies one call_expression callee.
func (c *callCollector) recordCall(call *sitter.Node) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return
	}
	ln := line(call)
	switch callee.Type() {
	case "identifier":
		c.sites = append(c.sites, core.NamedCall(c.walker.text(callee), ln))
	case "member_expression":
		obj := callee.ChildByFieldName("object")
		prop := callee.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return
		}
		propName := c.walker.text(prop)
		switch obj.Type() {
		case "identifier":
			c.sites = append(c.sites, core.MemberCall(c.walker.text(obj), propName, ln))
		case "this":
			if c.enclosingClass != "" {
				c.sites = append(c.sites, core.MemberCall(c.enclosingClass, propName, ln))
			}
		default:
			// Deeper chains like a.b.c(): only the outermost access is
			// recorded; the object token is the full expression text and
			// resolution is expected to fail into a diagnostic.
			c.sites = append(c.sites, core.MemberCall(c.walker.text(obj), propName, ln))
		}
	}
}

// recordConstruction records `new Klass(args)` as a member call on the
// class's constructor.
func (c *callCollector) recordConstruction(newExpr *sitter.Node) {
	ctor := newExpr.ChildByFieldName("constructor")
	if ctor == nil || ctor.Type() != "identifier" {
		return
	}
	c.sites = append(c.sites, core.MemberCall(c.walker.text(ctor), core.ConstructorName, line(newExpr)))
}

// recordLocalInstanceBindings registers `const x = new K()` declarators
// found inside a body into the file's instance map.
func (c *callCollector) recordLocalInstanceBindings(decl *sitter.Node) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if nameNode == nil || value == nil || nameNode.Type() != "identifier" {
			continue
		}
		if value.Type() == "new_expression" {
			c.walker.recordInstanceBinding(c.walker.text(nameNode), value)
		}
	}
}
