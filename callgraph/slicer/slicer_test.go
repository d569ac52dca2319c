package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calltrace/callpath/callgraph/core"
)

func fid(name string) core.FunctionID {
	return core.FunctionID{FilePath: "/g.ts", QualifiedName: name}
}

func graph(t *testing.T, edges [][2]string) *core.CallGraph {
	t.Helper()
	g := core.NewCallGraph()
	for _, e := range edges {
		for _, name := range e {
			if !g.HasNode(fid(name)) {
				g.AddNode(&core.FunctionNode{ID: fid(name)})
			}
		}
		_, err := g.AddEdge(core.CallEdge{Caller: fid(e[0]), Callee: fid(e[1]), Kind: core.EdgeDirect})
		require.NoError(t, err)
	}
	return g
}

func TestSlice_KeepsOnlyPathNodes(t *testing.T) {
	// main → helper → transform, plus a branch main → process that never
	// reaches the target.
	g := graph(t, [][2]string{
		{"main", "helper"},
		{"helper", "transform"},
		{"main", "process"},
	})
	sliced := Slice(g, []core.FunctionID{fid("main")}, []core.FunctionID{fid("transform")})

	assert.Equal(t, 3, sliced.Len())
	assert.True(t, sliced.HasNode(fid("main")))
	assert.True(t, sliced.HasNode(fid("helper")))
	assert.True(t, sliced.HasNode(fid("transform")))
	assert.False(t, sliced.HasNode(fid("process")))
	assert.Len(t, sliced.Edges(), 2)
}

func TestSlice_Minimality(t *testing.T) {
	// Every kept node must lie on some source→target path.
	g := graph(t, [][2]string{
		{"s", "a"},
		{"a", "t"},
		{"a", "dead"},
		{"orphan", "t"},
	})
	sliced := Slice(g, []core.FunctionID{fid("s")}, []core.FunctionID{fid("t")})

	for _, n := range sliced.Nodes() {
		forward := reach(sliced, []core.FunctionID{fid("s")}, sliced.Successors)
		backward := reach(sliced, []core.FunctionID{fid("t")}, sliced.Predecessors)
		assert.True(t, forward[n.ID] && backward[n.ID], n.ID.QualifiedName)
	}
	assert.False(t, sliced.HasNode(fid("dead")))
	assert.False(t, sliced.HasNode(fid("orphan")))
}

func TestSlice_EmptyIntersection(t *testing.T) {
	g := graph(t, [][2]string{{"a", "b"}, {"c", "d"}})
	sliced := Slice(g, []core.FunctionID{fid("a")}, []core.FunctionID{fid("d")})
	assert.Zero(t, sliced.Len())
	assert.Empty(t, sliced.Edges())
}

func TestSlice_IgnoresUnknownStarts(t *testing.T) {
	g := graph(t, [][2]string{{"a", "b"}})
	sliced := Slice(g, []core.FunctionID{fid("missing"), fid("a")}, []core.FunctionID{fid("b")})
	assert.Equal(t, 2, sliced.Len())
}

func TestSlice_SourceEqualsTarget(t *testing.T) {
	g := graph(t, [][2]string{{"a", "b"}})
	sliced := Slice(g, []core.FunctionID{fid("a")}, []core.FunctionID{fid("a")})
	assert.Equal(t, 1, sliced.Len())
	assert.Empty(t, sliced.Edges())
}

func TestSlice_CycleThroughPath(t *testing.T) {
	g := graph(t, [][2]string{
		{"s", "a"},
		{"a", "b"},
		{"b", "a"},
		{"b", "t"},
	})
	sliced := Slice(g, []core.FunctionID{fid("s")}, []core.FunctionID{fid("t")})
	assert.Equal(t, 4, sliced.Len())
	assert.Len(t, sliced.Edges(), 4)
}
