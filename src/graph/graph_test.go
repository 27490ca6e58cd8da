package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlang/lumenbuild/src/cmap"
	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
	"github.com/lumenlang/lumenbuild/src/lower"
	"github.com/lumenlang/lumenbuild/src/plan"
	"github.com/lumenlang/lumenbuild/src/solve"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T, files map[string]string) (*discover.Result, *solve.Solution) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeFile(t, filepath.Join(root, rel), content)
	}
	mod := core.ModuleSource{Name: core.ParseModuleName("alice/hello"), Origin: core.Origin{Kind: core.OriginLocal}}
	disc, err := discover.Discover([]discover.ResolvedModule{{Source: mod, Root: root}})
	require.NoError(t, err)
	sol, err := solve.Solve(disc)
	require.NoError(t, err)
	return disc, sol
}

func defaultOpts() core.BuildOptions {
	return core.BuildOptions{
		Backend:       core.WasmGC,
		OptLevel:      core.Release,
		RunMode:       core.RunBuild,
		TargetDirRoot: "/target",
		StdlibPath:    "/stdlib",
		Compilers:     core.CompilerPaths{DefaultCC: "cc"},
	}
}

func TestEmitProducesOneActionPerLoweredNode(t *testing.T) {
	disc, sol := setup(t, map[string]string{
		"lumen.mod.json":     `{"name": "alice/hello"}`,
		"lumen.pkg.json":     `{"is-main": true, "imports": [{"path": "alice/hello/lib"}]}`,
		"main.lm":            "",
		"lib/lumen.pkg.json": `{}`,
		"lib/util.lm":        "",
	})
	pkgId, _ := disc.PackageByFQN("alice/hello")
	pkg := disc.Package(pkgId)

	opts := defaultOpts()
	planGraph, err := plan.Plan(disc, sol, []core.UserIntent{{Kind: core.IntentBuild, Target: pkg.Fqn}}, opts)
	require.NoError(t, err)

	lowered, err := lower.Lower(disc, sol, planGraph, opts)
	require.NoError(t, err)

	g, err := Emit(disc, planGraph, lowered, opts)
	require.NoError(t, err)

	assert.Equal(t, len(lowered.Commands), len(g.Actions))
	for _, a := range g.Actions {
		assert.NotEmpty(t, a.Label)
		assert.NotEmpty(t, a.Command)
		assert.NotEmpty(t, a.Hash)
		assert.NotEmpty(t, a.Outputs)
	}
}

func TestEmitLinkCoreInputsIncludeDependencyCoreOutput(t *testing.T) {
	disc, sol := setup(t, map[string]string{
		"lumen.mod.json":     `{"name": "alice/hello"}`,
		"lumen.pkg.json":     `{"is-main": true, "imports": [{"path": "alice/hello/lib"}]}`,
		"main.lm":            "",
		"lib/lumen.pkg.json": `{}`,
		"lib/util.lm":        "",
	})
	pkgId, _ := disc.PackageByFQN("alice/hello")
	pkg := disc.Package(pkgId)
	libId, _ := disc.PackageByFQN("alice/hello/lib")
	libPkg := disc.Package(libId)

	opts := defaultOpts()
	planGraph, err := plan.Plan(disc, sol, []core.UserIntent{{Kind: core.IntentBuild, Target: pkg.Fqn}}, opts)
	require.NoError(t, err)
	lowered, err := lower.Lower(disc, sol, planGraph, opts)
	require.NoError(t, err)
	g, err := Emit(disc, planGraph, lowered, opts)
	require.NoError(t, err)

	wantLabel := label(disc, plan.Node{Kind: plan.LinkCoreNode, Target: core.BuildTarget{Package: pkgId, Kind: core.Source}})
	var linkAction *Action
	for i := range g.Actions {
		if g.Actions[i].Label == wantLabel {
			linkAction = &g.Actions[i]
		}
	}
	require.NotNil(t, linkAction)

	foundLibCore := false
	for _, in := range linkAction.Inputs {
		if strings.Contains(in, libPkg.Fqn.ShortAlias()) && strings.HasSuffix(in, ".core") {
			foundLibCore = true
		}
	}
	assert.True(t, foundLibCore, "link action must depend on the lib package's .core output, got %v", linkAction.Inputs)
}

func TestDedupeOrderedPreservesFirstOccurrenceOrder(t *testing.T) {
	interner := cmap.NewInterner()
	out := dedupeOrdered(interner, []string{"a.lm", "b.lm", "a.lm", "c.lm"})
	assert.Equal(t, []string{"a.lm", "b.lm", "c.lm"}, out)
}

func TestContentHashIsDeterministicForSameInputs(t *testing.T) {
	h1 := contentHash("lumenc -build-core a.lm", []string{"a.lm"}, []string{"a.lmi", "a.core"})
	h2 := contentHash("lumenc -build-core a.lm", []string{"a.lm"}, []string{"a.lmi", "a.core"})
	h3 := contentHash("lumenc -build-core b.lm", []string{"b.lm"}, []string{"b.lmi", "b.core"})
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
