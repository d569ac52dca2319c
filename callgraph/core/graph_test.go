package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(file, name string) *FunctionNode {
	return &FunctionNode{ID: FunctionID{FilePath: file, QualifiedName: name}, StartLine: 1}
}

func TestCallGraph_AddNodeFirstWriteWins(t *testing.T) {
	g := NewCallGraph()
	first := node("/a.ts", "f")
	first.StartLine = 10
	assert.True(t, g.AddNode(first))

	second := node("/a.ts", "f")
	second.StartLine = 99
	assert.False(t, g.AddNode(second))

	got, ok := g.Node(FunctionID{FilePath: "/a.ts", QualifiedName: "f"})
	require.True(t, ok)
	assert.Equal(t, uint32(10), got.StartLine)
	assert.Equal(t, 1, g.Len())
}

func TestCallGraph_AddEdgeValidation(t *testing.T) {
	g := NewCallGraph()
	g.AddNode(node("/a.ts", "f"))
	g.AddNode(node("/a.ts", "g"))

	fID := FunctionID{FilePath: "/a.ts", QualifiedName: "f"}
	gID := FunctionID{FilePath: "/a.ts", QualifiedName: "g"}
	missing := FunctionID{FilePath: "/a.ts", QualifiedName: "nope"}

	// Unknown kind is an invariant violation.
	_, err := g.AddEdge(CallEdge{Caller: fID, Callee: gID, Kind: "bogus"})
	assert.Error(t, err)

	// Dangling endpoints are invariant violations.
	_, err = g.AddEdge(CallEdge{Caller: fID, Callee: missing, Kind: EdgeDirect})
	assert.Error(t, err)
	_, err = g.AddEdge(CallEdge{Caller: missing, Callee: gID, Kind: EdgeDirect})
	assert.Error(t, err)

	// Self-edges are silently dropped.
	added, err := g.AddEdge(CallEdge{Caller: fID, Callee: fID, Kind: EdgeDirect})
	require.NoError(t, err)
	assert.False(t, added)

	// First edge wins; the duplicate keeps its kind and line.
	added, err = g.AddEdge(CallEdge{Caller: fID, Callee: gID, Kind: EdgeDirect, CallLine: 4})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = g.AddEdge(CallEdge{Caller: fID, Callee: gID, Kind: EdgeDIDefault, CallLine: 9})
	require.NoError(t, err)
	assert.False(t, added)

	require.Len(t, g.Edges(), 1)
	assert.Equal(t, EdgeDirect, g.Edges()[0].Kind)
	assert.Equal(t, uint32(4), g.Edges()[0].CallLine)
}

func TestCallGraph_Adjacency(t *testing.T) {
	g := NewCallGraph()
	g.AddNode(node("/a.ts", "f"))
	g.AddNode(node("/a.ts", "g"))
	g.AddNode(node("/a.ts", "h"))
	fID := FunctionID{FilePath: "/a.ts", QualifiedName: "f"}
	gID := FunctionID{FilePath: "/a.ts", QualifiedName: "g"}
	hID := FunctionID{FilePath: "/a.ts", QualifiedName: "h"}
	_, err := g.AddEdge(CallEdge{Caller: fID, Callee: gID, Kind: EdgeDirect})
	require.NoError(t, err)
	_, err = g.AddEdge(CallEdge{Caller: fID, Callee: hID, Kind: EdgeDirect})
	require.NoError(t, err)

	assert.Equal(t, []FunctionID{gID, hID}, g.Successors(fID))
	assert.Equal(t, []FunctionID{fID}, g.Predecessors(hID))
	assert.Empty(t, g.Successors(hID))
}

func TestCallGraph_Merge(t *testing.T) {
	a := NewCallGraph()
	a.AddNode(node("/a.ts", "f"))
	a.AddNode(node("/a.ts", "g"))
	fID := FunctionID{FilePath: "/a.ts", QualifiedName: "f"}
	gID := FunctionID{FilePath: "/a.ts", QualifiedName: "g"}
	_, err := a.AddEdge(CallEdge{Caller: fID, Callee: gID, Kind: EdgeDirect})
	require.NoError(t, err)

	b := NewCallGraph()
	stale := node("/a.ts", "f")
	stale.StartLine = 77
	b.AddNode(stale)
	b.AddNode(node("/a.ts", "g"))
	b.AddNode(node("/a.ts", "h"))
	hID := FunctionID{FilePath: "/a.ts", QualifiedName: "h"}
	_, err = b.AddEdge(CallEdge{Caller: fID, Callee: gID, Kind: EdgeDIDefault})
	require.NoError(t, err)
	_, err = b.AddEdge(CallEdge{Caller: gID, Callee: hID, Kind: EdgeDirect})
	require.NoError(t, err)

	require.NoError(t, a.Merge(b))
	assert.Equal(t, 3, a.Len())
	assert.Len(t, a.Edges(), 2)
	got, _ := a.Node(fID)
	assert.Equal(t, uint32(1), got.StartLine)
}

func TestExternalID(t *testing.T) {
	id := ExternalID("some-pkg", "streamText")
	assert.True(t, id.IsExternal())
	assert.Equal(t, "<external>::some-pkg", id.FilePath)
	assert.False(t, FunctionID{FilePath: "/a.ts", QualifiedName: "f"}.IsExternal())
}

func TestEdgeKindValid(t *testing.T) {
	for _, k := range []EdgeKind{EdgeDirect, EdgeStaticMethod, EdgeDIDefault,
		EdgeInstrumentWrapper, EdgeInstanceMethod, EdgeReExport, EdgeExternal} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, EdgeKind("mystery").Valid())
}
