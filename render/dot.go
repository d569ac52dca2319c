package render

import (
	"fmt"
	"sort"
	"strings"
)

// Node fills by role. Source wins over target when a node is both.
const (
	fillSource       = "#bbdefb"
	fillTarget       = "#c8e6c9"
	fillInstrumented = "#ffe0b2"
	fillExternal     = "#eeeeee"
	fillDefault      = "#ffffff"
)

// Dot renders the document as a Graphviz digraph named callpath, top to
// bottom, with one cluster per source file labeled by its
// repository-relative path.
func Dot(doc Document) string {
	var b strings.Builder
	b.WriteString("digraph callpath {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	byFile := make(map[string][]Node)
	for _, n := range doc.Nodes {
		byFile[n.FilePath] = append(byFile[n.FilePath], n)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for i, file := range files {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&b, "    label=%s;\n", quote(file))
		b.WriteString("    style=rounded;\n    color=gray60;\n")
		for _, n := range byFile[file] {
			fmt.Fprintf(&b, "    %s [label=%s, fillcolor=%s];\n",
				quote(n.ID), quote(nodeLabel(n)), quote(nodeFill(n)))
		}
		b.WriteString("  }\n")
	}
	b.WriteString("\n")

	for _, e := range doc.Edges {
		attrs := edgeAttrs(e.Kind)
		if attrs != "" {
			fmt.Fprintf(&b, "  %s -> %s [%s];\n", quote(e.From), quote(e.To), attrs)
		} else {
			fmt.Fprintf(&b, "  %s -> %s;\n", quote(e.From), quote(e.To))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(n Node) string {
	return fmt.Sprintf("%s\n:%d", n.QualifiedName, n.Line)
}

func nodeFill(n Node) string {
	switch {
	case n.IsSource:
		return fillSource
	case n.IsTarget:
		return fillTarget
	case n.IsInstrumented:
		return fillInstrumented
	case n.IsExternal:
		return fillExternal
	}
	return fillDefault
}

// edgeAttrs maps the closed edge-kind set onto the Graphviz style
// vocabulary. Direct edges keep the default style.
func edgeAttrs(kind string) string {
	switch kind {
	case "static-method":
		return "color=\"#1565c0\""
	case "di-default":
		return "style=dashed, label=\"DI\""
	case "instrument-wrapper":
		return "style=dotted"
	case "instance-method":
		return "color=\"#6a1b9a\""
	case "re-export":
		return "style=dotted, label=\"re-export\""
	case "external":
		return "style=dashed, color=gray50"
	}
	return ""
}

func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}
