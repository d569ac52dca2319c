package extraction

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/calltrace/callpath/callgraph/core"
)

// Sentinel identifiers the instrumentation unwrapper recognizes. A wrapper
// call in an initializer keeps the outer variable as the function identity;
// the in-place marker flags every method of the named class.
const (
	InstrumentWrapperName = "instrumentFn"
	InstrumentInPlaceName = "instrumentOwnMethodsInPlace"
)

// Parser converts one source file into a core.ParsedFile. It is stateless
// and safe for concurrent use; each ParseFile call creates its own
// tree-sitter parser.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// languageFor picks the grammar by file extension. TSX needs its own
// grammar; plain JavaScript files parse with the JavaScript grammar so JSX
// in .jsx files survives.
func languageFor(filePath string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

// ParseFile parses the source text and extracts the complete syntactic
// model: functions, call sites, imports, exports, facade bindings, DI
// defaults, and constructor field assignments. A tree-sitter failure is a
// recoverable file fault; callers treat the file as absent.
func (p *Parser) ParseFile(filePath string, source []byte) (*core.ParsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(filePath))
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	w := &fileWalker{
		src:  source,
		file: core.NewParsedFile(filePath),
	}
	w.walkProgram(tree.RootNode())
	w.applyInPlaceInstrumentation()
	w.synthesizeModuleScope(source)

	return w.file, nil
}

// fileWalker carries the per-file extraction state through the single
// top-level pass.
type fileWalker struct {
	src  []byte
	file *core.ParsedFile

	// moduleCalls collects calls found in top-level expression statements;
	// a non-empty list produces the synthetic <module> function.
	moduleCalls []core.CallSite
	// inPlaceClasses names classes marked by the in-place instrumentation
	// sentinel; applied after the walk so statement order does not matter.
	inPlaceClasses []string
}

func (w *fileWalker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

func line(n *sitter.Node) uint32 {
	return n.StartPoint().Row + 1
}

func endLine(n *sitter.Node) uint32 {
	return n.EndPoint().Row + 1
}

// walkProgram visits each top-level statement exactly once. Nested function
// and class declarations are independent scopes and are never descended
// into here; the call-site collector applies the same refusal.
func (w *fileWalker) walkProgram(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		w.walkTopLevel(root.Child(i))
	}
}

// walkTopLevel dispatches one top-level statement. Exported declarations
// arrive wrapped in an export_statement and go through walkExport instead.
func (w *fileWalker) walkTopLevel(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		w.declareFunction(node)
	case "lexical_declaration", "variable_declaration":
		w.walkVariableDeclaration(node)
	case "class_declaration", "abstract_class_declaration":
		w.declareClass(node)
	case "import_statement":
		w.walkImport(node)
	case "export_statement":
		w.walkExport(node)
	case "expression_statement":
		w.walkTopLevelExpression(node)
	}
}

// synthesizeModuleScope emits the <module> function when any top-level
// expression statement contained a call.
func (w *fileWalker) synthesizeModuleScope(source []byte) {
	if len(w.moduleCalls) == 0 {
		return
	}
	total := uint32(strings.Count(string(source), "\n") + 1)
	w.file.Functions = append(w.file.Functions, &core.ParsedFunction{
		QualifiedName: core.ModuleScope,
		StartLine:     1,
		EndLine:       total,
		CallSites:     w.moduleCalls,
	})
}

func (w *fileWalker) applyInPlaceInstrumentation() {
	for _, className := range w.inPlaceClasses {
		prefix := className + "."
		for _, fn := range w.file.Functions {
			if strings.HasPrefix(fn.QualifiedName, prefix) {
				fn.IsInstrumented = true
			}
		}
	}
}

// walkTopLevelExpression handles top-level expression statements: the
// in-place instrumentation marker, facade and instance bindings made by
// assignment, and module-scope call sites.
func (w *fileWalker) walkTopLevelExpression(stmt *sitter.Node) {
	expr := firstNamedChild(stmt)
	if expr == nil {
		return
	}

	if expr.Type() == "call_expression" {
		if className, ok := w.inPlaceInstrumentationTarget(expr); ok {
			w.inPlaceClasses = append(w.inPlaceClasses, className)
			return
		}
	}

	if expr.Type() == "assignment_expression" {
		left := expr.ChildByFieldName("left")
		right := expr.ChildByFieldName("right")
		if left != nil && right != nil && left.Type() == "identifier" {
			if obj := w.unwrapObjectLiteral(right); obj != nil {
				w.declareFacade(w.text(left), obj)
				return
			}
			if right.Type() == "new_expression" {
				w.recordInstanceBinding(w.text(left), right)
				// fall through: constructor call still counts below
			}
		}
	}

	calls := w.collectCalls(stmt, "")
	w.moduleCalls = append(w.moduleCalls, calls...)
}

// inPlaceInstrumentationTarget matches `instrumentOwnMethodsInPlace(Klass)`.
func (w *fileWalker) inPlaceInstrumentationTarget(call *sitter.Node) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || w.text(fn) != InstrumentInPlaceName {
		return "", false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "identifier" {
			return w.text(arg), true
		}
	}
	return "", false
}

// recordInstanceBinding registers `name = new ClassName(...)` so later
// member calls on name resolve as instance-method edges.
func (w *fileWalker) recordInstanceBinding(name string, newExpr *sitter.Node) {
	ctor := newExpr.ChildByFieldName("constructor")
	if ctor != nil && ctor.Type() == "identifier" {
		w.file.InstanceOf[name] = w.text(ctor)
	}
}

// firstNamedChild returns the first named child, skipping punctuation.
func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// isFunctionLike reports whether the node is an inline function value. The
// grammar pinned by go-tree-sitter has used both "function" and
// "function_expression" for anonymous functions across versions; accept
// both.
func isFunctionLike(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

// unwrapObjectLiteral peels `Object.freeze(x)`, `x as const`, and
// `x satisfies T` down to an object literal, or returns nil.
func (w *fileWalker) unwrapObjectLiteral(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "object":
			return n
		case "as_expression", "satisfies_expression", "parenthesized_expression", "non_null_expression":
			n = firstNamedChild(n)
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn == nil || fn.Type() != "member_expression" || w.text(fn) != "Object.freeze" {
				return nil
			}
			args := n.ChildByFieldName("arguments")
			if args == nil || args.NamedChildCount() == 0 {
				return nil
			}
			n = args.NamedChild(0)
		default:
			return nil
		}
	}
	return nil
}
