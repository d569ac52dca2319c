package resolution

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/callgraph/registry"
)

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// project writes fixture files under a temp root and returns a wired
// resolver.
func project(t *testing.T, includeExternal bool, files map[string]string) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cache := NewParseCache(osReader{}, core.NopSink{})
	modules := registry.NewModuleResolver(root, registry.CompilerSettings{BaseDir: root})
	return NewResolver(cache, modules, includeExternal, core.NopSink{}), root
}

func mustResolve(t *testing.T, r *Resolver, path, caller string, siteIndex int) Target {
	t.Helper()
	file, ok := r.Files().Get(path)
	require.True(t, ok, "parse %s", path)
	fn := file.FunctionByName(caller)
	require.NotNil(t, fn, "function %s", caller)
	require.Greater(t, len(fn.CallSites), siteIndex)
	target, ok := r.ResolveCall(file, fn, fn.CallSites[siteIndex])
	require.True(t, ok, "resolve site %d of %s", siteIndex, caller)
	return target
}

func TestResolve_LocalFunction(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "function helper() {}\nexport function main() { helper(); }",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, "helper", target.ID.QualifiedName)
	assert.Equal(t, core.EdgeDirect, target.Kind)
}

func TestResolve_Import(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "import { helper } from './b';\nexport function main() { helper(); }",
		"b.ts": "export function helper() {}",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, filepath.Join(root, "b.ts"), target.ID.FilePath)
	assert.Equal(t, "helper", target.ID.QualifiedName)
	assert.Equal(t, core.EdgeDirect, target.Kind)
}

func TestResolve_DefaultImportFacade(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"caller.ts": "import FKLoader from './fkloader';\nexport function main() { FKLoader.loadById(\"abc\"); }",
		"fkloader.ts": `function validate(id: string) {}
function loadById(id: string) { validate(id); }
function loadMany(ids: string[]) {}
export default Object.freeze({ loadById, loadMany });`,
	})
	target := mustResolve(t, r, filepath.Join(root, "caller.ts"), "main", 0)
	assert.Equal(t, "loadById", target.ID.QualifiedName)
	assert.Equal(t, filepath.Join(root, "fkloader.ts"), target.ID.FilePath)
}

func TestResolve_StaticMethodThroughImport(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "import { Worker } from './c';\nexport function main() { Worker.process(\"x\"); }",
		"c.ts": "export class Worker { static process(input: string) {} }",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, "Worker.process", target.ID.QualifiedName)
	assert.Equal(t, core.EdgeStaticMethod, target.Kind)
}

func TestResolve_NamespaceImport(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "import * as utils from './utils';\nexport function main() { utils.fmt(); }",
		"utils.ts": "export function fmt() {}",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, "fmt", target.ID.QualifiedName)
	assert.Equal(t, core.EdgeDirect, target.Kind)
}

func TestResolve_InstanceMethod(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `import { Worker } from './c';
export function main() {
  const w = new Worker();
  w.process("x");
}`,
		"c.ts": "export class Worker { process(input: string) {} }",
	})
	// Site 0 is the construction, site 1 the instance call.
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 1)
	assert.Equal(t, core.EdgeInstanceMethod, target.Kind)
	// Resolver law: the target's qualified name starts with the class name.
	assert.True(t, strings.HasPrefix(target.ID.QualifiedName, "Worker."))
}

func TestResolve_ConstructorFieldDI(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"agent.ts": `import { streamText } from './streamText';
export class Agent {
  constructor(deps = { streamText }) {
    this._streamText = deps.streamText;
  }
  run() {
    return this._streamText("hello");
  }
}`,
		"streamText.ts": "export function streamText(prompt: string) {}",
	})
	target := mustResolve(t, r, filepath.Join(root, "agent.ts"), "Agent.run", 0)
	assert.Equal(t, core.EdgeDIDefault, target.Kind)
	assert.Equal(t, "streamText", target.ID.QualifiedName)
	assert.Equal(t, filepath.Join(root, "streamText.ts"), target.ID.FilePath)
}

func TestResolve_DIDefaultMemberCall(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `import { persist } from './store';
export function run(deps = { save: persist }) {
  deps.save("x");
}`,
		"store.ts": "export function persist(data: string) {}",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "run", 0)
	assert.Equal(t, core.EdgeDIDefault, target.Kind)
	assert.Equal(t, "persist", target.ID.QualifiedName)
}

func TestResolve_DINamedCallGuard(t *testing.T) {
	// A DI default whose localRef equals the identifier must not recurse.
	r, root := project(t, false, map[string]string{
		"a.ts": `export function run(deps = { helper }) {
  helper();
}`,
	})
	file, ok := r.Files().Get(filepath.Join(root, "a.ts"))
	require.True(t, ok)
	fn := file.FunctionByName("run")
	require.NotNil(t, fn)
	_, resolved := r.ResolveCall(file, fn, fn.CallSites[0])
	assert.False(t, resolved)
}

func TestResolve_ReExportChain(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts":     "import { helper } from './barrel';\nexport function main() { helper(); }",
		"barrel.ts": "export { helper } from './impl';",
		"impl.ts":  "export function helper() {}",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, filepath.Join(root, "impl.ts"), target.ID.FilePath)
	assert.Equal(t, core.EdgeReExport, target.Kind)
}

func TestResolve_WildcardReExport(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts":     "import { helper } from './barrel';\nexport function main() { helper(); }",
		"barrel.ts": "export * from './impl';",
		"impl.ts":  "export function helper() {}",
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, filepath.Join(root, "impl.ts"), target.ID.FilePath)
}

func TestResolve_ReExportCycleTerminates(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "import { ghost } from './x';\nexport function main() { ghost(); }",
		"x.ts": "export { ghost } from './y';",
		"y.ts": "export { ghost } from './x';",
	})
	file, ok := r.Files().Get(filepath.Join(root, "a.ts"))
	require.True(t, ok)
	fn := file.FunctionByName("main")
	_, resolved := r.ResolveCall(file, fn, fn.CallSites[0])
	assert.False(t, resolved)
}

func TestResolve_ExternalSynthesis(t *testing.T) {
	r, root := project(t, true, map[string]string{
		"app.ts": `import { streamText } from 'some-external-pkg';
import * as extNs from 'another-ext-pkg';
export function main() {
  streamText("hi");
  extNs.run();
}`,
	})
	first := mustResolve(t, r, filepath.Join(root, "app.ts"), "main", 0)
	assert.True(t, first.ID.IsExternal())
	assert.Equal(t, core.ExternalPrefix+"some-external-pkg", first.ID.FilePath)
	assert.True(t, first.Node.IsExternal)
	assert.Zero(t, first.Node.StartLine)
	assert.Equal(t, core.EdgeExternal, first.Kind)

	second := mustResolve(t, r, filepath.Join(root, "app.ts"), "main", 1)
	assert.Equal(t, core.ExternalPrefix+"another-ext-pkg", second.ID.FilePath)
}

func TestResolve_ExternalDisabled(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"app.ts": "import { streamText } from 'some-external-pkg';\nexport function main() { streamText(\"hi\"); }",
	})
	file, ok := r.Files().Get(filepath.Join(root, "app.ts"))
	require.True(t, ok)
	fn := file.FunctionByName("main")
	_, resolved := r.ResolveCall(file, fn, fn.CallSites[0])
	assert.False(t, resolved)
}

func TestResolve_InstrumentWrapperKind(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `const traced = instrumentFn((x: number) => x);
export function main() { traced(1); }`,
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, core.EdgeInstrumentWrapper, target.Kind)
	assert.True(t, target.Node.IsInstrumented)
}

func TestResolve_ObjectBindingIndirection(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": `function realImpl() {}
const Api = Object.freeze({ run: realImpl });
export function main() { Api.run(); }`,
	})
	target := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, "realImpl", target.ID.QualifiedName)
	assert.Equal(t, core.EdgeStaticMethod, target.Kind)
}

func TestResolve_Idempotence(t *testing.T) {
	r, root := project(t, false, map[string]string{
		"a.ts": "import { helper } from './b';\nexport function main() { helper(); }",
		"b.ts": "export function helper() {}",
	})
	first := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	second := mustResolve(t, r, filepath.Join(root, "a.ts"), "main", 0)
	assert.Equal(t, first, second)
}

func TestParseCache_FaultIsRecordedOnce(t *testing.T) {
	diags := &core.DiagnosticBuffer{}
	cache := NewParseCache(osReader{}, diags)
	_, ok := cache.Get("/nonexistent/file.ts")
	assert.False(t, ok)
	_, ok = cache.Get("/nonexistent/file.ts")
	assert.False(t, ok)
	assert.Len(t, diags.All(), 1)
	assert.Equal(t, core.FaultFile, diags.All()[0].Category)
}
