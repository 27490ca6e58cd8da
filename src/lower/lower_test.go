package lower

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
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

func TestLowerBuildCoreRendersPkgAndOutputFlags(t *testing.T) {
	disc, sol := setup(t, map[string]string{
		"lumen.mod.json": `{"name": "alice/hello"}`,
		"lumen.pkg.json": `{}`,
		"hello.lm":       "",
	})
	pkgId, _ := disc.PackageByFQN("alice/hello")
	pkg := disc.Package(pkgId)

	opts := defaultOpts()
	graph, err := plan.Plan(disc, sol, []core.UserIntent{{Kind: core.IntentBuild, Target: pkg.Fqn}}, opts)
	require.NoError(t, err)

	result, err := Lower(disc, sol, graph, opts)
	require.NoError(t, err)

	var cmd Command
	var found bool
	for _, n := range graph.Nodes {
		if n.Kind == plan.BuildCoreNode && n.Target.Kind == core.Source {
			cmd, found = result.Commands[n.Key()]
		}
	}
	require.True(t, found)
	assert.Equal(t, "lumenc", cmd.Program)
	assert.Contains(t, cmd.Args, "-build-core")
	assert.Contains(t, cmd.Args, "hello.lm")
	assert.Contains(t, cmd.Args, "-pkg")
	assert.Contains(t, cmd.Args, "alice/hello")
}

func TestLowerLinkCoreOrdersCoreInputsBeforeOutputFlag(t *testing.T) {
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
	graph, err := plan.Plan(disc, sol, []core.UserIntent{{Kind: core.IntentBuild, Target: pkg.Fqn}}, opts)
	require.NoError(t, err)

	result, err := Lower(disc, sol, graph, opts)
	require.NoError(t, err)

	linkKey := plan.Node{Kind: plan.LinkCoreNode, Target: core.BuildTarget{Package: pkgId, Kind: core.Source}}.Key()
	cmd, ok := result.Commands[linkKey]
	require.True(t, ok)
	assert.Equal(t, "-link", cmd.Args[0])

	outIdx := -1
	for i, a := range cmd.Args {
		if a == "-o" {
			outIdx = i
		}
	}
	require.Greater(t, outIdx, 0, "-o flag must come after the .core input list")
}

func TestLowerLinkCoreEmitsOverrideForResolvedVirtualImplementor(t *testing.T) {
	disc, sol := setup(t, map[string]string{
		"lumen.mod.json":        `{"name": "alice/hello"}`,
		"lumen.pkg.json":        `{"is-main": true, "imports": [{"path": "alice/hello/iface"}], "overrides": ["alice/hello/impl"]}`,
		"main.lm":               "",
		"iface/lumen.pkg.json":  `{"virtual-pkg": {"has-default": false}}`,
		"iface/pkg.lmti":        ``,
		"impl/lumen.pkg.json":   `{"implement": "alice/hello/iface"}`,
		"impl/impl.lm":          "",
	})
	pkgId, _ := disc.PackageByFQN("alice/hello")
	pkg := disc.Package(pkgId)
	implId, _ := disc.PackageByFQN("alice/hello/impl")
	implPkg := disc.Package(implId)

	opts := defaultOpts()
	graph, err := plan.Plan(disc, sol, []core.UserIntent{{Kind: core.IntentBuild, Target: pkg.Fqn}}, opts)
	require.NoError(t, err)

	result, err := Lower(disc, sol, graph, opts)
	require.NoError(t, err)

	linkKey := plan.Node{Kind: plan.LinkCoreNode, Target: core.BuildTarget{Package: pkgId, Kind: core.Source}}.Key()
	cmd, ok := result.Commands[linkKey]
	require.True(t, ok)

	wantAlias := core.MangleSymbol("alice/hello/iface", implPkg.Fqn.ShortAlias())
	wantFlag := "alice/hello/iface=" + wantAlias
	require.Contains(t, cmd.Args, "-override")
	require.Contains(t, cmd.Args, wantFlag)
}

func TestLowerPrebuildSubstitutesInputOutputPlaceholders(t *testing.T) {
	info := &plan.PrebuildInfo{
		Command: "lumen-gen $input -o $output",
		Inputs:  []string{"grammar.lmy"},
		Outputs: []string{"grammar_gen.lm"},
	}
	cmd, err := lowerPrebuild(info)
	require.NoError(t, err)
	assert.Equal(t, "lumen-gen", cmd.Program)
	assert.Equal(t, []string{"grammar.lmy", "-o", "grammar_gen.lm"}, cmd.Args)
}

func TestCommandLineIsShellQuoted(t *testing.T) {
	cmd := Command{Program: "lumenc", Args: []string{"-pkg-sources", "alice/hello:/tmp/a b"}}
	line := cmd.Line()
	assert.True(t, strings.Contains(line, "lumenc"))
	assert.True(t, strings.Contains(line, "'/tmp/a b'") || strings.Contains(line, `"/tmp/a b"`))
}
