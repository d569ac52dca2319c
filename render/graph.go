// Package render shapes a sliced call graph for the downstream consumers:
// the interchange JSON document, Graphviz text, and the self-contained
// interactive visualization.
package render

import (
	"path/filepath"
	"strings"

	"github.com/calltrace/callpath/callgraph/core"
)

// Node is the interchange node shape.
type Node struct {
	ID             string `json:"id"`
	FilePath       string `json:"filePath"`
	QualifiedName  string `json:"qualifiedName"`
	Line           uint32 `json:"line"`
	IsInstrumented bool   `json:"isInstrumented"`
	IsSource       bool   `json:"isSource"`
	IsTarget       bool   `json:"isTarget"`
	Description    string `json:"description,omitempty"`
	Signature      string `json:"signature,omitempty"`
	SourceSnippet  string `json:"sourceSnippet,omitempty"`
	IsExternal     bool   `json:"isExternal,omitempty"`
}

// Edge is the interchange edge shape.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Kind     string `json:"kind"`
	CallLine uint32 `json:"callLine"`
}

// Document is the full interchange shape consumed by the renderers and the
// interactive visualization.
type Document struct {
	Nodes      []Node              `json:"nodes"`
	Edges      []Edge              `json:"edges"`
	Codeowners map[string][]string `json:"codeowners,omitempty"`
	RepoRoot   string              `json:"repoRoot,omitempty"`
	Editor     string              `json:"editor,omitempty"`
}

// SnippetLoader supplies an optional source excerpt per node. nil disables
// snippets.
type SnippetLoader func(id core.FunctionID, startLine, endLine uint32) string

// FromCallGraph shapes a graph for rendering. File paths become
// repository-relative; node ids are `relativePath::qualifiedName`.
func FromCallGraph(g *core.CallGraph, repoRoot string, sources, targets []core.FunctionID, snippets SnippetLoader) Document {
	isSource := idSet(sources)
	isTarget := idSet(targets)

	var doc Document
	for _, n := range g.Nodes() {
		node := Node{
			ID:             nodeID(n.ID, repoRoot),
			FilePath:       relPath(n.ID.FilePath, repoRoot),
			QualifiedName:  n.ID.QualifiedName,
			Line:           n.StartLine,
			IsInstrumented: n.IsInstrumented,
			IsSource:       isSource[n.ID],
			IsTarget:       isTarget[n.ID],
			Description:    n.Description,
			Signature:      n.Signature,
			IsExternal:     n.IsExternal,
		}
		if snippets != nil && !n.IsExternal {
			node.SourceSnippet = snippets(n.ID, n.StartLine, n.EndLine)
		}
		doc.Nodes = append(doc.Nodes, node)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, Edge{
			From:     nodeID(e.Caller, repoRoot),
			To:       nodeID(e.Callee, repoRoot),
			Kind:     string(e.Kind),
			CallLine: e.CallLine,
		})
	}
	return doc
}

func idSet(ids []core.FunctionID) map[core.FunctionID]bool {
	set := make(map[core.FunctionID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func nodeID(id core.FunctionID, repoRoot string) string {
	return relPath(id.FilePath, repoRoot) + "::" + id.QualifiedName
}

// relPath makes a project path repository-relative; external descriptors
// pass through untouched.
func relPath(path, repoRoot string) string {
	if strings.HasPrefix(path, core.ExternalPrefix) || repoRoot == "" {
		return path
	}
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
