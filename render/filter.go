package render

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Filter drops nodes for which the expression evaluates to false, except
// source and target endpoints, which always survive, then drops edges that
// lost an endpoint. Expressions see one node at a time as `node` with the
// interchange field names, e.g.:
//
//	node.qualifiedName startsWith "Agent."
//	node.filePath contains "services/" and !node.isExternal
func Filter(doc Document, expression string) (Document, error) {
	env := map[string]interface{}{"node": nodeEnv(Node{})}
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return Document{}, fmt.Errorf("compiling filter: %w", err)
	}

	kept := make(map[string]bool)
	out := Document{
		Codeowners: doc.Codeowners,
		RepoRoot:   doc.RepoRoot,
		Editor:     doc.Editor,
	}
	for _, n := range doc.Nodes {
		keep := n.IsSource || n.IsTarget
		if !keep {
			result, err := expr.Run(program, map[string]interface{}{"node": nodeEnv(n)})
			if err != nil {
				return Document{}, fmt.Errorf("evaluating filter: %w", err)
			}
			keep, _ = result.(bool)
		}
		if keep {
			kept[n.ID] = true
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range doc.Edges {
		if kept[e.From] && kept[e.To] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, nil
}

func nodeEnv(n Node) map[string]interface{} {
	return map[string]interface{}{
		"id":             n.ID,
		"filePath":       n.FilePath,
		"qualifiedName":  n.QualifiedName,
		"line":           int(n.Line),
		"isInstrumented": n.IsInstrumented,
		"isSource":       n.IsSource,
		"isTarget":       n.IsTarget,
		"isExternal":     n.IsExternal,
	}
}
