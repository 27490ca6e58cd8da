// Package lower turns a populated build-plan graph into concrete,
// externally-runnable command lines. Every function here
// is a pure translation from a node's side-table entry plus the layout
// package's paths into a Command; none of it touches the filesystem or a
// subprocess.
package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/google/shlex"

	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
	"github.com/lumenlang/lumenbuild/src/layout"
	"github.com/lumenlang/lumenbuild/src/plan"
	"github.com/lumenlang/lumenbuild/src/solve"
)

// Command is one lowered, ready-to-run invocation.
type Command struct {
	// Program is the executable, e.g. the resolved `lumenc` path.
	Program string
	Args    []string
}

// Line renders the command as a single shell-safe string, used for dry-run
// output and logging ("print the would-be command verbatim").
func (c Command) Line() string {
	return shellescape.QuoteCommand(append([]string{c.Program}, c.Args...))
}

// Result is the full lowering output: one Command per node that lowers to an
// external invocation. Structural/bookkeeping nodes (BuildVirtual,
// GenerateMbti, BuildDocs) have no command of their own and are absent here.
type Result struct {
	Commands map[string]Command
}

// commonArgs renders the flags every compiler invocation carries regardless
// of node kind: the standard-library path, the error-report format, and the
// backend, followed by -O2 for release builds, -g when debug symbols are on,
// and -source-map when source maps are on for Js or WasmGC.
func commonArgs(opts core.BuildOptions) []string {
	args := []string{"-std-path", opts.StdlibPath, "-error-format", "json", "-target", opts.Backend.String()}
	if opts.OptLevel == core.Release {
		args = append(args, "-O2")
	}
	if opts.DebugSymbols {
		args = append(args, "-g")
	}
	if opts.SourceMap && (opts.Backend == core.Js || opts.Backend == core.WasmGC) {
		args = append(args, "-source-map")
	}
	return args
}

// lumenc is the compiler binary name, overridable via BuildOptions.Compilers.
func lumenc(opts core.BuildOptions) string {
	if opts.Compilers.Compiler != "" {
		return opts.Compilers.Compiler
	}
	return "lumenc"
}

// Lower walks every node in g and produces its Command, where one applies.
func Lower(disc *discover.Result, sol *solve.Solution, g *plan.Graph, opts core.BuildOptions) (*Result, error) {
	res := &Result{Commands: make(map[string]Command)}

	for key, info := range g.CheckInfo {
		n := findNode(g, key)
		res.Commands[key] = lowerCheckLike(disc, n, info, g, opts, "-check")
	}
	for key, info := range g.BuildCoreInfo {
		n := findNode(g, key)
		res.Commands[key] = lowerCheckLike(disc, n, info, g, opts, "-build-core")
	}
	for key, info := range g.TestInfo {
		n := findNode(g, key)
		res.Commands[key] = lowerGenerateTestInfo(disc, n, info, opts)
	}
	for key, info := range g.LinkInfo {
		n := findNode(g, key)
		res.Commands[key] = lowerLinkCore(disc, sol, n, info, opts)
	}
	for key, info := range g.ExecInfo {
		n := findNode(g, key)
		cmd, err := lowerMakeExecutable(disc, n, info, opts)
		if err != nil {
			return nil, err
		}
		res.Commands[key] = cmd
	}
	for key := range g.CStubInfo {
		n := findNode(g, key)
		if n.Kind == plan.BuildCStubNode {
			res.Commands[key] = lowerBuildCStub(disc, n, opts)
		} else {
			res.Commands[key] = lowerArchiveCStubs(disc, n, g.CStubInfo[key], opts)
		}
	}
	for key, info := range g.PrebuildInfo {
		cmd, err := lowerPrebuild(info)
		if err != nil {
			return nil, err
		}
		res.Commands[key] = cmd
	}
	for _, n := range g.Nodes {
		if n.Kind == plan.BuildRuntimeLibNode {
			res.Commands[n.Key()] = lowerBuildRuntimeLib(opts)
		}
	}
	for key, info := range g.BundleInfo {
		res.Commands[key] = lowerBundle(disc, info, opts)
	}
	return res, nil
}

func findNode(g *plan.Graph, key string) plan.Node {
	for _, n := range g.Nodes {
		if n.Key() == key {
			return n
		}
	}
	return plan.Node{}
}

// lowerCheckLike renders a Check or BuildCore invocation: both share the
// same flag shape, differing only in the mode flag and whether a .core
// output is produced (a representative `lumenc check`/`lumenc
// build-package` lowering).
func lowerCheckLike(disc *discover.Result, n plan.Node, info *plan.BuildTargetInfo, g *plan.Graph, opts core.BuildOptions, mode string) Command {
	t := n.Target
	pkg := disc.Package(t.Package)
	args := append([]string{mode}, info.Files...)
	args = append(args, "-o", layout.MiPath(opts, pkg.Fqn, t.Kind))
	if mode == "-build-core" {
		args = append(args, "-core-out", layout.CorePath(opts, pkg.Fqn, t.Kind))
	}
	args = append(args, "-pkg", pkg.Fqn.String())
	args = append(args, "-pkg-sources", fmt.Sprintf("%s:%s", pkg.Fqn.String(), pkg.Root))

	deps := make([]plan.Node, 0)
	for _, e := range edgesFromGraph(g, n) {
		if e.To.Kind == n.Kind {
			deps = append(deps, e.To)
		}
	}
	sort.Slice(deps, func(i, j int) bool {
		return disc.Package(deps[i].Target.Package).Fqn.String() < disc.Package(deps[j].Target.Package).Fqn.String()
	})
	for _, dep := range deps {
		depPkg := disc.Package(dep.Target.Package)
		alias := depPkg.Fqn.ShortAlias()
		args = append(args, "-i", fmt.Sprintf("%s:%s", layout.MiPath(opts, depPkg.Fqn, dep.Target.Kind), alias))
	}

	args = append(args, commonArgs(opts)...)
	if info.Flags.NoOpt {
		args = append(args, "-O0")
	}
	if pkg.Manifest.IsMain && t.Kind == core.Source {
		args = append(args, "-is-main")
	}
	switch t.Kind {
	case core.WhiteboxTest:
		args = append(args, "-whitebox-test")
	case core.BlackboxTest:
		args = append(args, "-blackbox-test")
	case core.InlineTest:
		args = append(args, "-enable-test-mode")
	}
	if pkg.Manifest.WarnList != "" {
		args = append(args, "-warn-list", pkg.Manifest.WarnList)
	}
	if pkg.Manifest.AlertList != "" {
		args = append(args, "-alert-list", pkg.Manifest.AlertList)
	}
	return Command{Program: lumenc(opts), Args: args}
}

// edgesFromGraph is a small convenience used only by the lowerer: the
// planner already guarantees deterministic edge order after
// sortForDeterminism, but lowering re-derives the dependency list directly
// off the graph to stay decoupled from the planner's internal edge-kind
// filtering.
func edgesFromGraph(g *plan.Graph, n plan.Node) []plan.Edge {
	var out []plan.Edge
	for _, e := range g.Edges {
		if e.From == n {
			out = append(out, e)
		}
	}
	return out
}

func lowerGenerateTestInfo(disc *discover.Result, n plan.Node, info *plan.TestInfo, opts core.BuildOptions) Command {
	pkg := disc.Package(n.Target.Package)
	args := []string{"-gen-test-driver", "-pkg", pkg.Fqn.String()}
	args = append(args, info.Files...)
	args = append(args, "-driver-out", layout.TestDriverPath(opts, pkg.Fqn, n.Target.Kind))
	args = append(args, "-info-out", layout.TestInfoPath(opts, pkg.Fqn, n.Target.Kind))
	return Command{Program: lumenc(opts), Args: args}
}

func lowerLinkCore(disc *discover.Result, sol *solve.Solution, n plan.Node, info *plan.LinkInfo, opts core.BuildOptions) Command {
	pkg := disc.Package(n.Target.Package)
	args := []string{"-link"}
	for _, t := range info.LinkedOrder {
		tp := disc.Package(t.Package)
		args = append(args, layout.CorePath(opts, tp.Fqn, t.Kind))
	}
	args = append(args, "-o", layout.LinkOutputPath(opts, pkg.Fqn, n.Target.Kind))
	args = append(args, overrideArgsFor(disc, sol, info.LinkedOrder)...)
	args = append(args, commonArgs(opts)...)
	if pkg.Manifest.IsMain && n.Target.Kind == core.Source {
		args = append(args, "-is-main")
	}
	return Command{Program: lumenc(opts), Args: args}
}

// overrideArgsFor emits a `-override <virtual-fqn>=<mangled-alias>` flag for
// every virtual package among the linked targets whose implementor has been
// resolved by the solver: the linker needs the implementor's mangled alias
// threaded into its override table so calls through the virtual package
// resolve to the concrete implementation.
func overrideArgsFor(disc *discover.Result, sol *solve.Solution, linked []core.BuildTarget) []string {
	type override struct{ virtualFqn, flag string }
	var overrides []override
	for _, t := range linked {
		pkg := disc.Package(t.Package)
		if !pkg.Manifest.IsVirtual() {
			continue
		}
		implId, ok := sol.Overrides[t.Package]
		if !ok {
			continue
		}
		implPkg := disc.Package(implId)
		alias := core.MangleSymbol(pkg.Fqn.String(), implPkg.Fqn.ShortAlias())
		overrides = append(overrides, override{pkg.Fqn.String(), fmt.Sprintf("%s=%s", pkg.Fqn.String(), alias)})
	}
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].virtualFqn < overrides[j].virtualFqn })

	args := make([]string, 0, len(overrides)*2)
	for _, o := range overrides {
		args = append(args, "-override", o.flag)
	}
	return args
}

func lowerMakeExecutable(disc *discover.Result, n plan.Node, info *plan.ExecInfo, opts core.BuildOptions) (Command, error) {
	pkg := disc.Package(n.Target.Package)
	cc := info.CC
	if cc == "" {
		return Command{}, fmt.Errorf("%s: no C compiler configured for MakeExecutable", pkg.Fqn)
	}
	args := []string{layout.LinkOutputPath(opts, pkg.Fqn, n.Target.Kind), layout.RuntimeLibPath(opts)}
	for _, stubOwner := range info.Stubs {
		stubPkg := disc.Package(stubOwner)
		args = append(args, layout.ArchivePath(opts, stubPkg.Fqn))
	}
	args = append(args, "-o", layout.ExecutablePath(opts, pkg.Fqn, n.Target.Kind))
	args = append(args, info.LinkFlags...)
	return Command{Program: cc, Args: args}, nil
}

func lowerBuildCStub(disc *discover.Result, n plan.Node, opts core.BuildOptions) Command {
	pkg := disc.Package(n.Package)
	cc := pkg.Manifest.Link[opts.Backend.String()].CC
	if cc == "" {
		cc = opts.Compilers.CC
	}
	if cc == "" {
		cc = opts.Compilers.DefaultCC
	}
	src := pkg.CStubFiles[n.StubIndex]
	args := []string{"-c", src, "-o", layout.CStubObjectPath(opts, pkg.Fqn, n.StubIndex)}
	args = append(args, pkg.Manifest.Link[opts.Backend.String()].CCFlags...)
	if opts.NativeSharedRuntime {
		args = append(args, "-fPIC")
	}
	return Command{Program: cc, Args: args}
}

func lowerArchiveCStubs(disc *discover.Result, n plan.Node, info *plan.CStubInfo, opts core.BuildOptions) Command {
	pkg := disc.Package(n.Package)
	ar := opts.Compilers.AR
	if ar == "" {
		ar = "ar"
	}
	args := []string{"rcs", layout.ArchivePath(opts, pkg.Fqn)}
	for i := 0; i < info.StubCount; i++ {
		args = append(args, layout.CStubObjectPath(opts, pkg.Fqn, i))
	}
	return Command{Program: ar, Args: args}
}

func lowerBuildRuntimeLib(opts core.BuildOptions) Command {
	cc := opts.Compilers.CC
	if cc == "" {
		cc = opts.Compilers.DefaultCC
	}
	args := []string{"-c", opts.RuntimeCPath, "-o", layout.RuntimeLibPath(opts)}
	if opts.NativeSharedRuntime {
		args = append([]string{"-fPIC", "-shared"}, args...)
	}
	return Command{Program: cc, Args: args}
}

func lowerBundle(disc *discover.Result, info *plan.BundleInfo, opts core.BuildOptions) Command {
	args := []string{"-bundle"}
	for _, t := range info.Members {
		pkg := disc.Package(t.Package)
		args = append(args, layout.CorePath(opts, pkg.Fqn, t.Kind))
	}
	return Command{Program: lumenc(opts), Args: args}
}

// lowerPrebuild tokenizes a user-declared pre-build rule's command template
// and substitutes $input/$output with its own input and output lists,
// joined by spaces, following the usual worker-argument convention of
// shlex-splitting a user-supplied string before execution.
func lowerPrebuild(info *plan.PrebuildInfo) (Command, error) {
	expanded := strings.NewReplacer(
		"$input", strings.Join(info.Inputs, " "),
		"$output", strings.Join(info.Outputs, " "),
	).Replace(info.Command)

	argv, err := shlex.Split(expanded)
	if err != nil {
		return Command{}, fmt.Errorf("pre-build rule %q: %w", info.Command, err)
	}
	if len(argv) == 0 {
		return Command{}, fmt.Errorf("pre-build rule %q: empty command", info.Command)
	}
	return Command{Program: argv[0], Args: argv[1:]}, nil
}
