package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/callgraph/registry"
	"github.com/calltrace/callpath/callgraph/resolution"
)

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func project(t *testing.T, includeExternal bool, files map[string]string) (*resolution.Resolver, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cache := resolution.NewParseCache(osReader{}, core.NopSink{})
	modules := registry.NewModuleResolver(root, registry.CompilerSettings{BaseDir: root})
	return resolution.NewResolver(cache, modules, includeExternal, core.NopSink{}), root
}

func id(root, file, name string) core.FunctionID {
	return core.FunctionID{FilePath: filepath.Join(root, file), QualifiedName: name}
}

// chainProject builds a linear call chain f0 → f1 → … → f(n-1) across one file.
func chainProject(t *testing.T, n int) (*resolution.Resolver, string) {
	src := ""
	for i := 0; i < n; i++ {
		body := ""
		if i+1 < n {
			body = "f" + itoa(i+1) + "();"
		}
		src += "function f" + itoa(i) + "() { " + body + " }\n"
	}
	return project(t, false, map[string]string{"chain.ts": src})
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestBuild_RequiresBoundsAndSources(t *testing.T) {
	r, _ := project(t, false, map[string]string{"a.ts": "export function f() {}"})

	_, err := New(r, Options{MaxDepth: 0, MaxNodes: 10})
	assert.Error(t, err)
	_, err = New(r, Options{MaxDepth: 5, MaxNodes: 0})
	assert.Error(t, err)

	b, err := New(r, Options{MaxDepth: 5, MaxNodes: 10})
	require.NoError(t, err)
	_, err = b.Build(nil)
	assert.Error(t, err)
}

func TestBuild_MaxDepthBoundsEdges(t *testing.T) {
	r, root := chainProject(t, 10)
	b, err := New(r, Options{MaxDepth: 3, MaxNodes: 100})
	require.NoError(t, err)

	g, err := b.Build([]core.FunctionID{id(root, "chain.ts", "f0")})
	require.NoError(t, err)

	// Depth 3 reaches f0..f3: three edges, four nodes.
	assert.Equal(t, 4, g.Len())
	assert.Len(t, g.Edges(), 3)
	assert.True(t, g.HasNode(id(root, "chain.ts", "f3")))
	assert.False(t, g.HasNode(id(root, "chain.ts", "f4")))
}

func TestBuild_MaxNodesBoundsGraph(t *testing.T) {
	r, root := chainProject(t, 20)
	b, err := New(r, Options{MaxDepth: 50, MaxNodes: 5})
	require.NoError(t, err)

	g, err := b.Build([]core.FunctionID{id(root, "chain.ts", "f0")})
	require.NoError(t, err)
	assert.LessOrEqual(t, g.Len(), 5)
}

func TestBuild_GraphSoundness(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `function again() { self(); }
function self() { self(); again(); again(); }
export function main() { self(); self(); }`,
	})
	b, err := New(r, Options{MaxDepth: 10, MaxNodes: 100})
	require.NoError(t, err)
	g, err := b.Build([]core.FunctionID{id(root, "a.ts", "main")})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, e := range g.Edges() {
		// No self-edges.
		assert.NotEqual(t, e.Caller, e.Callee)
		// No duplicate (caller, callee) pairs.
		key := e.Caller.String() + "->" + e.Callee.String()
		assert.False(t, seen[key], key)
		seen[key] = true
		// Endpoints are nodes of the graph.
		assert.True(t, g.HasNode(e.Caller))
		assert.True(t, g.HasNode(e.Callee))
	}
}

func TestBuild_MergesMultipleSources(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `function shared() {}
export function one() { shared(); }
export function two() { shared(); }`,
	})
	b, err := New(r, Options{MaxDepth: 5, MaxNodes: 100})
	require.NoError(t, err)
	g, err := b.Build([]core.FunctionID{
		id(root, "a.ts", "one"),
		id(root, "a.ts", "two"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Len(t, g.Edges(), 2)
}

func TestBuild_UnknownSourceYieldsEmptyTraversal(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "export function main() {}",
	})
	b, err := New(r, Options{MaxDepth: 5, MaxNodes: 100})
	require.NoError(t, err)
	g, err := b.Build([]core.FunctionID{id(root, "a.ts", "missing")})
	require.NoError(t, err)
	assert.Zero(t, g.Len())
}

func TestBuild_SourceNormalizesThroughFacade(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `function impl() { helper(); }
function helper() {}
export const Api = Object.freeze({ run: impl });`,
	})
	b, err := New(r, Options{MaxDepth: 5, MaxNodes: 100})
	require.NoError(t, err)
	g, err := b.Build([]core.FunctionID{id(root, "a.ts", "Api.run")})
	require.NoError(t, err)
	assert.True(t, g.HasNode(id(root, "a.ts", "impl")))
	assert.True(t, g.HasNode(id(root, "a.ts", "helper")))
}

func TestBuild_ExternalNodesAreLeaves(t *testing.T) {
	r, root := project(t, true, map[string]string{
		"app.ts": `import { streamText } from 'some-external-pkg';
export function main() { streamText("x"); }`,
	})
	b, err := New(r, Options{MaxDepth: 5, MaxNodes: 100})
	require.NoError(t, err)
	g, err := b.Build([]core.FunctionID{id(root, "app.ts", "main")})
	require.NoError(t, err)

	ext := core.ExternalID("some-external-pkg", "streamText")
	require.True(t, g.HasNode(ext))
	assert.Empty(t, g.OutEdges(ext))
}

func TestBuild_ParallelEdgesCollapseToFirstSeen(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `function helper() {}
export function main() {
  helper();
  helper();
}`,
	})
	b, err := New(r, Options{MaxDepth: 5, MaxNodes: 100})
	require.NoError(t, err)
	g, err := b.Build([]core.FunctionID{id(root, "a.ts", "main")})
	require.NoError(t, err)
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, uint32(3), g.Edges()[0].CallLine)
}
