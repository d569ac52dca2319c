package codeowners

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsEmptySet(t *testing.T) {
	set, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, set.OwnersFor("src/a.ts"))
}

func TestOwnersFor_LastMatchWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".github"), 0o755))
	content := `# ownership
* @org/platform
src/agent/ @org/agents @alice
src/agent/legacy.ts bob@example.com
*.test.ts @org/qa
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".github", "CODEOWNERS"), []byte(content), 0o644))

	set, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"platform"}, set.OwnersFor("src/other.ts"))
	assert.Equal(t, []string{"agents", "alice"}, set.OwnersFor("src/agent/run.ts"))
	assert.Equal(t, []string{"bob"}, set.OwnersFor("src/agent/legacy.ts"))
	assert.Equal(t, []string{"qa"}, set.OwnersFor("a.test.ts"))
}

func TestMapping(t *testing.T) {
	root := t.TempDir()
	content := "src/ @team\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "CODEOWNERS"), []byte(content), 0o644))
	set, err := Load(root)
	require.NoError(t, err)

	m := set.Mapping([]string{"src/a.ts", "lib/b.ts"})
	assert.Equal(t, map[string][]string{"src/a.ts": {"team"}}, m)
}

func TestMatches_DoubleStar(t *testing.T) {
	assert.True(t, matches("src/**/handlers/*.ts", "src/a/b/handlers/x.ts"))
	assert.True(t, matches("src/**/handlers/*.ts", "src/handlers/x.ts"))
	assert.False(t, matches("src/**/handlers/*.ts", "src/a/b/other/x.ts"))
}
