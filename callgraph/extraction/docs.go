package extraction

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// signature renders the verbatim parenthesized parameter list plus the
// return annotation when present.
func (w *fileWalker) signature(fnNode *sitter.Node) string {
	params := fnNode.ChildByFieldName("parameters")
	var sig string
	if params != nil {
		sig = w.text(params)
	} else if single := fnNode.ChildByFieldName("parameter"); single != nil {
		sig = "(" + w.text(single) + ")"
	} else {
		return ""
	}
	if ret := fnNode.ChildByFieldName("return_type"); ret != nil {
		retText := w.text(ret)
		if !strings.HasPrefix(retText, ":") {
			retText = ": " + retText
		}
		sig += retText
	}
	return sig
}

// docComment returns the free-text lead of the comment attached to a
// declaration, with structured tags stripped. A declaration wrapped in an
// export statement looks at the export statement's preceding sibling.
func (w *fileWalker) docComment(declNode *sitter.Node) string {
	comment := precedingComment(declNode)
	if comment == nil {
		if parent := declNode.Parent(); parent != nil && parent.Type() == "export_statement" {
			comment = precedingComment(parent)
		}
	}
	if comment == nil {
		return ""
	}
	return cleanComment(w.text(comment))
}

// precedingComment finds a comment sibling that ends on the line directly
// above the declaration.
func precedingComment(node *sitter.Node) *sitter.Node {
	prev := node.PrevNamedSibling()
	if prev == nil || prev.Type() != "comment" {
		return nil
	}
	if prev.EndPoint().Row+1 != node.StartPoint().Row {
		return nil
	}
	return prev
}

// cleanComment strips comment markers and returns the lead text before the
// first structured tag.
func cleanComment(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimPrefix(raw, "/*")
	raw = strings.TrimSuffix(raw, "*/")

	var lead []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "@") {
			break
		}
		lead = append(lead, line)
	}
	text := strings.TrimSpace(strings.Join(lead, " "))
	return strings.Join(strings.Fields(text), " ")
}
