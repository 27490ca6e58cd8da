package plan

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/lumenlang/lumenbuild/src/classify"
	"github.com/lumenlang/lumenbuild/src/cli/logging"
	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
	"github.com/lumenlang/lumenbuild/src/solve"
)

var log = logging.Log

type planner struct {
	disc  *discover.Result
	sol   *solve.Solution
	opts  core.BuildOptions
	graph *Graph

	pending  []Node
	resolved map[string]bool
	// current is the node currently being expanded, used to attribute
	// need_node call sites for the debug aid.
	current *Node
}

// Plan runs the build planner's worklist fixpoint over the given intents.
func Plan(disc *discover.Result, sol *solve.Solution, intents []core.UserIntent, opts core.BuildOptions) (g *Graph, err error) {
	p := &planner{disc: disc, sol: sol, opts: opts, graph: newGraph(), resolved: make(map[string]bool)}

	defer func() {
		if r := recover(); r != nil {
			if p.current != nil {
				for _, site := range p.graph.callSites[p.current.Key()] {
					log.Error("need_node call site for %s: %s", p.current, site)
				}
			}
			panic(r)
		}
	}()

	for _, intent := range intents {
		if err := p.seedIntent(intent); err != nil {
			return nil, err
		}
	}

	for len(p.pending) > 0 {
		n := p.pending[len(p.pending)-1]
		p.pending = p.pending[:len(p.pending)-1]
		if p.resolved[n.Key()] {
			continue
		}
		p.current = &n
		if err := p.expand(n); err != nil {
			return nil, err
		}
		p.resolved[n.Key()] = true
	}

	coalesceCheckIntoBuildCore(p.graph)
	sortForDeterminism(p.graph, disc)
	return p.graph, nil
}

func (p *planner) needNode(n Node) {
	key := n.Key()
	if p.resolved[key] {
		return
	}
	if p.current != nil {
		p.graph.callSites[key] = append(p.graph.callSites[key], p.current.String())
	}
	if !p.graph.hasNode(key) {
		p.graph.nodeSeen[key] = n
		p.graph.Nodes = append(p.graph.Nodes, n)
		p.pending = append(p.pending, n)
	}
}

func (p *planner) seedIntent(intent core.UserIntent) error {
	pkgId, ok := p.disc.PackageByFQN(intent.Target.String())
	if !ok {
		return fmt.Errorf("intent %s: unknown package %s", intent.Kind, intent.Target)
	}
	pkg := p.disc.Package(pkgId)

	switch intent.Kind {
	case core.IntentCheck:
		p.needNode(Node{Kind: CheckNode, Target: core.BuildTarget{Package: pkgId, Kind: core.Source}})

	case core.IntentBuild:
		source := core.BuildTarget{Package: pkgId, Kind: core.Source}
		p.needNode(Node{Kind: BuildCoreNode, Target: source})
		if pkg.Manifest.IsMain {
			p.needNode(Node{Kind: LinkCoreNode, Target: source})
			if p.opts.Backend.IsNative() {
				p.needNode(Node{Kind: MakeExecutableNode, Target: source})
			}
		}

	case core.IntentTest:
		for _, kind := range []core.TargetKind{core.WhiteboxTest, core.BlackboxTest, core.InlineTest} {
			files, err := classify.Files(pkg, kind, p.opts.Backend, p.opts.OptLevel)
			if err != nil {
				return err
			}
			if len(files) == 0 && kind != core.InlineTest {
				continue
			}
			target := core.BuildTarget{Package: pkgId, Kind: kind}
			p.needNode(Node{Kind: LinkCoreNode, Target: target})
			if p.opts.Backend.IsNative() {
				p.needNode(Node{Kind: MakeExecutableNode, Target: target})
			}
		}

	case core.IntentBundle:
		p.needNode(Node{Kind: BundleNode, Module: pkg.Module})

	case core.IntentDoc:
		p.needNode(Node{Kind: BuildDocsNode})

	case core.IntentGenerateMbti:
		p.needNode(Node{Kind: GenerateMbtiNode, Package: pkgId})

	default:
		return fmt.Errorf("unhandled intent kind %s", intent.Kind)
	}
	return nil
}

func (p *planner) expand(n Node) error {
	switch n.Kind {
	case CheckNode:
		return p.expandCheck(n)
	case BuildCoreNode:
		return p.expandBuildCore(n)
	case GenerateTestInfoNode:
		return p.expandGenerateTestInfo(n)
	case LinkCoreNode:
		return p.expandLinkCore(n)
	case MakeExecutableNode:
		return p.expandMakeExecutable(n)
	case BuildCStubNode:
		return p.expandBuildCStub(n)
	case ArchiveCStubsNode:
		return p.expandArchiveCStubs(n)
	case BundleNode:
		return p.expandBundle(n)
	case BuildVirtualNode:
		return p.expandBuildVirtual(n)
	case RunPrebuildNode, RunLexPrebuildNode, RunYaccPrebuildNode:
		return p.expandPrebuild(n)
	case BuildRuntimeLibNode:
		return nil // no dependencies; side table carries nothing beyond its own path
	case GenerateMbtiNode:
		return nil // no plan-graph dependencies (mirrors BuildVirtual)
	case BuildDocsNode:
		return p.expandBuildDocs(n)
	default:
		return fmt.Errorf("unhandled node kind %s", n.Kind)
	}
}

func (p *planner) expandCheck(n Node) error {
	t := n.Target
	pkg := p.disc.Package(t.Package)
	files, err := classify.Files(pkg, t.Kind, p.opts.Backend, p.opts.OptLevel)
	if err != nil {
		return err
	}
	p.graph.CheckInfo[n.Key()] = &BuildTargetInfo{Files: files, Flags: p.opts.FlagsFor()}

	for _, e := range p.sol.EdgesFrom(t) {
		dep := Node{Kind: CheckNode, Target: e.To}
		p.needNode(dep)
		p.graph.addEdge(n, dep, allFilesEdge)
	}
	if pkg.Manifest.IsVirtual() {
		virtual := Node{Kind: BuildVirtualNode, Package: t.Package}
		p.needNode(virtual)
		p.graph.addEdge(n, virtual, structureEdge)
	}
	return nil
}

func (p *planner) expandBuildCore(n Node) error {
	t := n.Target
	pkg := p.disc.Package(t.Package)
	files, err := classify.Files(pkg, t.Kind, p.opts.Backend, p.opts.OptLevel)
	if err != nil {
		return err
	}
	flags := p.opts.FlagsFor()
	if t.Kind.IsTest() {
		flags.NoOpt = true
	}
	p.graph.BuildCoreInfo[n.Key()] = &BuildTargetInfo{Files: files, Flags: flags}

	for _, e := range p.sol.EdgesFrom(t) {
		dep := Node{Kind: BuildCoreNode, Target: e.To}
		p.needNode(dep)
		p.graph.addEdge(n, dep, miOnlyEdge)
	}
	if pkg.Manifest.IsVirtual() {
		virtual := Node{Kind: BuildVirtualNode, Package: t.Package}
		p.needNode(virtual)
		p.graph.addEdge(n, virtual, structureEdge)
	}
	if t.Kind.IsTest() {
		testInfo := Node{Kind: GenerateTestInfoNode, Target: t}
		p.needNode(testInfo)
		p.graph.addEdge(n, testInfo, structureEdge)
	}
	return nil
}

func (p *planner) expandGenerateTestInfo(n Node) error {
	pkg := p.disc.Package(n.Target.Package)
	files, err := classify.Files(pkg, n.Target.Kind, p.opts.Backend, p.opts.OptLevel)
	if err != nil {
		return err
	}
	p.graph.TestInfo[n.Key()] = &TestInfo{Files: files}
	return nil
}

// transitiveCoreClosure walks the solver graph reachable from t, returning
// every build target in the closure topologically sorted so a dependency
// precedes its dependents, ties broken by FQN string.
func (p *planner) transitiveCoreClosure(root core.BuildTarget) ([]core.BuildTarget, error) {
	detector := core.NewCycleDetector[core.BuildTarget]()
	visited := make(map[core.BuildTarget]bool)
	var order []core.BuildTarget

	var visit func(t core.BuildTarget) error
	visit = func(t core.BuildTarget) error {
		if visited[t] {
			return nil
		}
		visited[t] = true
		deps := p.sol.EdgesFrom(t)
		sort.Slice(deps, func(i, j int) bool {
			return p.fqnOf(deps[i].To.Package) < p.fqnOf(deps[j].To.Package)
		})
		for _, e := range deps {
			if cycle := detector.AddDependency(t, e.To); cycle != nil {
				chain := core.FormatChain(cycle, func(bt core.BuildTarget) string { return bt.String() })
				return fmt.Errorf("dependency cycle building %s:\n -> %s", root, chain)
			}
			if err := visit(e.To); err != nil {
				return err
			}
		}
		order = append(order, t)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

func (p *planner) fqnOf(pkgId core.PackageId) string {
	return p.disc.Package(pkgId).Fqn.String()
}

// stdlibBootstrapOrder returns [abort, core] build targets for the
// standard library module discovered alongside the rest of the tree, or nil
// if no stdlib module was resolved into this build (e.g. building the
// stdlib itself).
func (p *planner) stdlibBootstrapOrder() []core.BuildTarget {
	for i, mod := range p.disc.Modules {
		if !mod.Source.IsStdlib() {
			continue
		}
		modId := core.ModuleId(i)
		var order []core.BuildTarget
		if abortId, ok := p.disc.PackageInModule(modId, "abort"); ok {
			order = append(order, core.BuildTarget{Package: abortId, Kind: core.Source})
		}
		if coreId, ok := p.disc.PackageInModule(modId, ""); ok {
			order = append(order, core.BuildTarget{Package: coreId, Kind: core.Source})
		}
		return order
	}
	return nil
}

// prependStdlibBootstrap places the stdlib bootstrap cores at the front of
// closure, in order, ahead of every user core, removing any occurrence
// already present so the prefix isn't duplicated.
func (p *planner) prependStdlibBootstrap(closure []core.BuildTarget) []core.BuildTarget {
	bootstrap := p.stdlibBootstrapOrder()
	if len(bootstrap) == 0 {
		return closure
	}
	inBootstrap := make(map[core.BuildTarget]bool, len(bootstrap))
	for _, t := range bootstrap {
		inBootstrap[t] = true
	}
	out := make([]core.BuildTarget, 0, len(bootstrap)+len(closure))
	out = append(out, bootstrap...)
	for _, t := range closure {
		if !inBootstrap[t] {
			out = append(out, t)
		}
	}
	return out
}

// validateVirtualClosure fails with NoImplementorError for any virtual
// package reachable in closure that has neither a default implementation
// nor a resolved override.
func (p *planner) validateVirtualClosure(closure []core.BuildTarget) error {
	for _, t := range closure {
		pkg := p.disc.Package(t.Package)
		if !pkg.Manifest.IsVirtual() || pkg.Manifest.VirtualPkg.HasDefault {
			continue
		}
		if _, ok := p.sol.Overrides[t.Package]; ok {
			continue
		}
		return &core.NoImplementorError{Virtual: pkg.Fqn.String()}
	}
	return nil
}

func (p *planner) expandLinkCore(n Node) error {
	t := n.Target
	closure, err := p.transitiveCoreClosure(t)
	if err != nil {
		return err
	}
	if err := p.validateVirtualClosure(closure); err != nil {
		return err
	}
	closure = p.prependStdlibBootstrap(closure)

	var stubOwners []core.PackageId
	seenOwner := make(map[core.PackageId]bool)
	for _, tt := range closure {
		dep := Node{Kind: BuildCoreNode, Target: tt}
		p.needNode(dep)
		p.graph.addEdge(n, dep, coreOnlyEdge)

		pkg := p.disc.Package(tt.Package)
		if pkg.HasCStubs() && !seenOwner[tt.Package] {
			seenOwner[tt.Package] = true
			stubOwners = append(stubOwners, tt.Package)
		}
	}
	sort.Slice(stubOwners, func(i, j int) bool { return p.fqnOf(stubOwners[i]) < p.fqnOf(stubOwners[j]) })

	p.graph.LinkInfo[n.Key()] = &LinkInfo{LinkedOrder: closure, StubOwners: stubOwners}

	if p.opts.Backend.IsNative() && t.Kind.IsTest() {
		runtime := Node{Kind: BuildRuntimeLibNode}
		p.needNode(runtime)
		p.graph.addEdge(n, runtime, structureEdge)
		for _, owner := range stubOwners {
			archive := Node{Kind: ArchiveCStubsNode, Package: owner}
			p.needNode(archive)
			p.graph.addEdge(n, archive, structureEdge)
		}
	}
	return nil
}

func (p *planner) expandMakeExecutable(n Node) error {
	t := n.Target
	link := Node{Kind: LinkCoreNode, Target: t}
	p.needNode(link)
	p.graph.addEdge(n, link, structureEdge)

	runtime := Node{Kind: BuildRuntimeLibNode}
	p.needNode(runtime)
	p.graph.addEdge(n, runtime, structureEdge)

	closure, err := p.transitiveCoreClosure(t)
	if err != nil {
		return err
	}
	if err := p.validateVirtualClosure(closure); err != nil {
		return err
	}
	closure = p.prependStdlibBootstrap(closure)
	var stubs []core.PackageId
	linkFlags := make([]string, 0)
	seenOwner := make(map[core.PackageId]bool)
	for _, tt := range closure {
		pkg := p.disc.Package(tt.Package)
		if pkg.HasCStubs() && !seenOwner[tt.Package] {
			seenOwner[tt.Package] = true
			stubs = append(stubs, tt.Package)
			archive := Node{Kind: ArchiveCStubsNode, Package: tt.Package}
			p.needNode(archive)
			p.graph.addEdge(n, archive, structureEdge)
		}
		if link, ok := pkg.Manifest.Link[p.opts.Backend.String()]; ok {
			linkFlags = append(linkFlags, link.Flags...)
		}
	}
	sort.Slice(stubs, func(i, j int) bool { return p.fqnOf(stubs[i]) < p.fqnOf(stubs[j]) })

	cc := p.opts.Compilers.CC
	if cc == "" {
		cc = p.opts.Compilers.DefaultCC
	}
	p.graph.ExecInfo[n.Key()] = &ExecInfo{CC: cc, LinkFlags: dedupeSorted(linkFlags), Stubs: stubs}
	return nil
}

func (p *planner) expandBuildCStub(n Node) error {
	p.graph.CStubInfo[n.Key()] = &CStubInfo{StubCount: 1}
	return nil
}

func (p *planner) expandArchiveCStubs(n Node) error {
	pkg := p.disc.Package(n.Package)
	for i := range pkg.CStubFiles {
		stub := Node{Kind: BuildCStubNode, Package: n.Package, StubIndex: i}
		p.needNode(stub)
		p.graph.addEdge(n, stub, structureEdge)
	}
	p.graph.CStubInfo[n.Key()] = &CStubInfo{StubCount: len(pkg.CStubFiles)}
	return nil
}

func (p *planner) expandBundle(n Node) error {
	var members []core.BuildTarget
	for _, pkg := range p.disc.Packages {
		if pkg.Module != n.Module || pkg.Manifest.IsVirtual() || len(pkg.RegularFiles) == 0 {
			continue
		}
		target := core.BuildTarget{Package: pkg.Id, Kind: core.Source}
		dep := Node{Kind: BuildCoreNode, Target: target}
		p.needNode(dep)
		p.graph.addEdge(n, dep, coreOnlyEdge)
		members = append(members, target)
	}
	sort.Slice(members, func(i, j int) bool { return p.fqnOf(members[i].Package) < p.fqnOf(members[j].Package) })
	p.graph.BundleInfo[n.Key()] = &BundleInfo{Members: members}
	return nil
}

func (p *planner) expandBuildVirtual(n Node) error {
	pkg := p.disc.Package(n.Package)
	p.graph.VirtualInfo[n.Key()] = &VirtualInfo{InterfaceFile: pkg.VirtualInterfaceFile}
	return nil
}

func (p *planner) expandPrebuild(n Node) error {
	pkg := p.disc.Package(n.Package)
	if n.RuleIndex >= len(pkg.Manifest.PreBuild) {
		return fmt.Errorf("%s: prebuild rule index %d out of range", pkg.Fqn, n.RuleIndex)
	}
	rule := pkg.Manifest.PreBuild[n.RuleIndex]
	p.graph.PrebuildInfo[n.Key()] = &PrebuildInfo{Command: rule.Command, Inputs: rule.Input, Outputs: rule.Output}
	return nil
}

func (p *planner) expandBuildDocs(n Node) error {
	for _, pkg := range p.disc.Packages {
		if pkg.Manifest.IsVirtual() || len(pkg.RegularFiles) == 0 {
			continue
		}
		dep := Node{Kind: BuildCoreNode, Target: core.BuildTarget{Package: pkg.Id, Kind: core.Source}}
		p.needNode(dep)
		p.graph.addEdge(n, dep, miOnlyEdge)
	}
	return nil
}

func dedupeSorted(items []string) []string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return slices.Compact(sorted)
}

// coalesceCheckIntoBuildCore merges every Check(t) node into its matching
// BuildCore(t) node when both exist, guaranteeing at most one producer per
// `.lmi` output file (postprocess coalescing).
func coalesceCheckIntoBuildCore(g *Graph) {
	for _, n := range append([]Node(nil), g.Nodes...) {
		if n.Kind != CheckNode {
			continue
		}
		buildCore := Node{Kind: BuildCoreNode, Target: n.Target}
		if !g.hasNode(buildCore.Key()) {
			continue
		}
		for _, e := range g.edgesTo(n) {
			g.addEdge(e.From, buildCore, e.Kind)
		}
		for _, e := range g.edgesFrom(n) {
			g.addEdge(buildCore, e.To, e.Kind)
		}
		g.removeNode(n)
	}
}

// sortForDeterminism sorts every per-node collection so emission doesn't
// depend on the worklist's LIFO visiting order.
func sortForDeterminism(g *Graph, disc *discover.Result) {
	fqnOf := func(id core.PackageId) string { return disc.Package(id).Fqn.String() }

	sort.Slice(g.Nodes, func(i, j int) bool { return nodeLess(g.Nodes[i], g.Nodes[j], fqnOf) })
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return nodeLess(g.Edges[i].From, g.Edges[j].From, fqnOf)
		}
		return nodeLess(g.Edges[i].To, g.Edges[j].To, fqnOf)
	})
	for _, info := range g.CheckInfo {
		sort.Strings(info.Files)
	}
	for _, info := range g.BuildCoreInfo {
		sort.Strings(info.Files)
	}
	for _, info := range g.TestInfo {
		sort.Strings(info.Files)
	}
}

func nodeLess(a, b Node, fqnOf func(core.PackageId) string) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	aPkg, bPkg := a.Target.Package, b.Target.Package
	if a.Kind == BuildCStubNode || a.Kind == ArchiveCStubsNode || a.Kind == BuildVirtualNode ||
		a.Kind == GenerateMbtiNode || a.Kind == RunPrebuildNode || a.Kind == RunLexPrebuildNode || a.Kind == RunYaccPrebuildNode {
		aPkg, bPkg = a.Package, b.Package
	}
	if aPkg != bPkg {
		return fqnOf(aPkg) < fqnOf(bPkg)
	}
	if a.Target.Kind != b.Target.Kind {
		return a.Target.Kind < b.Target.Kind
	}
	if a.Module != b.Module {
		return a.Module < b.Module
	}
	if a.StubIndex != b.StubIndex {
		return a.StubIndex < b.StubIndex
	}
	return a.RuleIndex < b.RuleIndex
}
