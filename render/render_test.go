package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/layout"
)

func sampleGraph(t *testing.T) (*core.CallGraph, []core.FunctionID, []core.FunctionID) {
	t.Helper()
	g := core.NewCallGraph()
	main := core.FunctionID{FilePath: "/repo/src/a.ts", QualifiedName: "main"}
	helper := core.FunctionID{FilePath: "/repo/src/b.ts", QualifiedName: "helper"}
	ext := core.ExternalID("left-pad", "pad")
	g.AddNode(&core.FunctionNode{ID: main, StartLine: 2, Signature: "(): void"})
	g.AddNode(&core.FunctionNode{ID: helper, StartLine: 1, IsInstrumented: true})
	g.AddNode(&core.FunctionNode{ID: ext, IsExternal: true})
	_, err := g.AddEdge(core.CallEdge{Caller: main, Callee: helper, Kind: core.EdgeDIDefault, CallLine: 3})
	require.NoError(t, err)
	_, err = g.AddEdge(core.CallEdge{Caller: main, Callee: ext, Kind: core.EdgeExternal, CallLine: 4})
	require.NoError(t, err)
	return g, []core.FunctionID{main}, []core.FunctionID{helper}
}

func TestFromCallGraph(t *testing.T) {
	g, sources, targets := sampleGraph(t)
	doc := FromCallGraph(g, "/repo", sources, targets, nil)

	require.Len(t, doc.Nodes, 3)
	byID := make(map[string]Node)
	for _, n := range doc.Nodes {
		byID[n.ID] = n
	}

	main := byID["src/a.ts::main"]
	assert.Equal(t, "src/a.ts", main.FilePath)
	assert.True(t, main.IsSource)
	assert.False(t, main.IsTarget)
	assert.Equal(t, "(): void", main.Signature)

	helper := byID["src/b.ts::helper"]
	assert.True(t, helper.IsTarget)
	assert.True(t, helper.IsInstrumented)

	ext := byID["<external>::left-pad::pad"]
	assert.True(t, ext.IsExternal)
	assert.Zero(t, ext.Line)

	require.Len(t, doc.Edges, 2)
	assert.Equal(t, "di-default", doc.Edges[0].Kind)
	assert.Equal(t, uint32(3), doc.Edges[0].CallLine)
}

func TestDot(t *testing.T) {
	g, sources, targets := sampleGraph(t)
	doc := FromCallGraph(g, "/repo", sources, targets, nil)
	dot := Dot(doc)

	assert.True(t, strings.HasPrefix(dot, "digraph callpath {"))
	assert.Contains(t, dot, "rankdir=TB")
	assert.Contains(t, dot, `label="src/a.ts"`)
	assert.Contains(t, dot, `"src/a.ts::main"`)
	assert.Contains(t, dot, `main\n:2`)
	assert.Contains(t, dot, `style=dashed, label="DI"`)
	// Source fill wins for the source node.
	assert.Contains(t, dot, `fillcolor="#bbdefb"`)
	// One cluster per file plus the external pseudo-file.
	assert.Equal(t, 3, strings.Count(dot, "subgraph cluster_"))
}

func TestJSONRoundTrips(t *testing.T) {
	g, sources, targets := sampleGraph(t)
	doc := FromCallGraph(g, "/repo", sources, targets, nil)
	doc.Codeowners = map[string][]string{"src/a.ts": {"platform"}}

	raw, err := JSON(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, doc, decoded)
}

func TestHTMLEmbedsGraphAndGeometry(t *testing.T) {
	g, sources, targets := sampleGraph(t)
	doc := FromCallGraph(g, "/repo", sources, targets, nil)
	geometry := layout.Compute(LayoutGraph(doc), layout.Options{})

	page, err := HTML(doc, geometry, "callpath")
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "src/a.ts::main")
	assert.Contains(t, html, "fileOrder")
}

func TestFilter(t *testing.T) {
	g, sources, targets := sampleGraph(t)
	doc := FromCallGraph(g, "/repo", sources, targets, nil)

	filtered, err := Filter(doc, `!node.isExternal`)
	require.NoError(t, err)
	// The external intermediate drops; source and target stay.
	require.Len(t, filtered.Nodes, 2)
	require.Len(t, filtered.Edges, 1)
	assert.Equal(t, "src/b.ts::helper", filtered.Edges[0].To)

	_, err = Filter(doc, "not an expression ((")
	assert.Error(t, err)
}

func TestWriteSARIF(t *testing.T) {
	diags := []core.Diagnostic{
		{
			Category: core.FaultResolution,
			FilePath: "/repo/src/a.ts",
			Line:     12,
			Caller:   "main",
			Callee:   "ghost",
			Message:  "no strategy resolved ghost",
		},
		{
			Category: core.FaultFile,
			FilePath: "/repo/src/broken.ts",
			Message:  "parse failure",
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, diags, "/repo"))

	var log map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log["version"])
	assert.Contains(t, buf.String(), "unresolved-call")
	assert.Contains(t, buf.String(), "src/a.ts")
	assert.Contains(t, buf.String(), "unreadable-file")
}
