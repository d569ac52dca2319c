package selector

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calltrace/callpath/callgraph/core"
)

func TestParse(t *testing.T) {
	sel, err := Parse("src/a.ts", "/repo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/repo", "src", "a.ts"), sel.FilePath)
	assert.Empty(t, sel.Names)

	sel, err = Parse("src/a.ts::main", "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, sel.Names)

	sel, err = Parse("src/a.ts::a|b|C.method", "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "C.method"}, sel.Names)

	sel, err = Parse("/abs/path/a.ts::f", "/repo")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path/a.ts", sel.FilePath)

	_, err = Parse("", "/repo")
	assert.Error(t, err)
	_, err = Parse("src/a.ts::", "/repo")
	assert.Error(t, err)
}

func TestSelectionIDs(t *testing.T) {
	file := core.NewParsedFile("/repo/src/a.ts")
	file.Functions = append(file.Functions,
		&core.ParsedFunction{QualifiedName: "main"},
		&core.ParsedFunction{QualifiedName: "Box.open"},
		&core.ParsedFunction{QualifiedName: core.ModuleScope},
	)

	all := Selection{FilePath: file.FilePath}.IDs(file)
	require.Len(t, all, 2)
	assert.Equal(t, "main", all[0].QualifiedName)
	assert.Equal(t, "Box.open", all[1].QualifiedName)

	named := Selection{FilePath: file.FilePath, Names: []string{"Box.open"}}.IDs(file)
	require.Len(t, named, 1)
	assert.Equal(t, core.FunctionID{FilePath: file.FilePath, QualifiedName: "Box.open"}, named[0])
}
