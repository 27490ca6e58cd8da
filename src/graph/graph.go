// Package graph emits the final action graph: every
// lowered build-plan node becomes an externally-executable action with a
// deduplicated, ordered input list, a deduplicated, ordered output list, and
// a single properly-quoted command-line string.
package graph

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/lumenlang/lumenbuild/src/cli/logging"
	"github.com/lumenlang/lumenbuild/src/cmap"
	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
	"github.com/lumenlang/lumenbuild/src/layout"
	"github.com/lumenlang/lumenbuild/src/lower"
	"github.com/lumenlang/lumenbuild/src/plan"
)

var log = logging.Log

// Action is one externally-executable graph node.
type Action struct {
	// Label is a human-readable "<node variant>(<package FQN>)" string, used
	// by an executor's progress output and for error attribution.
	Label string

	Inputs  []string
	Outputs []string

	// Command is the single properly-quoted command-line string.
	Command string

	// Hash is the content hash (blake3, hex-encoded) of the command plus
	// its ordered input and output identifiers: a cheap fingerprint an
	// executor can use to skip re-running an action whose recipe and file
	// set haven't changed (byte-identical reruns).
	Hash string
}

// Graph is the emitter's output: the full set of actions, sorted by label.
type Graph struct {
	Actions []Action
}

// Emit walks every plan node that lowered to a command and produces its
// Action.
func Emit(disc *discover.Result, planGraph *plan.Graph, lowered *lower.Result, opts core.BuildOptions) (*Graph, error) {
	interner := cmap.NewInterner()
	out := &Graph{}

	for _, n := range planGraph.Nodes {
		cmd, ok := lowered.Commands[n.Key()]
		if !ok {
			continue // structural node (BuildVirtual, GenerateMbti): no external action
		}

		inputs, err := inputsFor(disc, planGraph, n, opts)
		if err != nil {
			return nil, err
		}
		outputs := outputsFor(disc, planGraph, n, opts)

		inputs = dedupeOrdered(interner, inputs)
		outputs = dedupeOrdered(interner, outputs)

		line := cmd.Line()
		action := Action{
			Label:   label(disc, n),
			Inputs:  inputs,
			Outputs: outputs,
			Command: line,
			Hash:    contentHash(line, inputs, outputs),
		}
		out.Actions = append(out.Actions, action)
	}

	sort.Slice(out.Actions, func(i, j int) bool { return out.Actions[i].Label < out.Actions[j].Label })

	log.Info("emitted %s action%s (%s)",
		humanize.Comma(int64(len(out.Actions))),
		plural(len(out.Actions)),
		humanize.Bytes(uint64(totalIdentifierBytes(out.Actions))))

	return out, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func totalIdentifierBytes(actions []Action) int {
	total := 0
	for _, a := range actions {
		for _, s := range a.Inputs {
			total += len(s)
		}
		for _, s := range a.Outputs {
			total += len(s)
		}
	}
	return total
}

// label renders the node-variant/package-FQN label the executor reports
// progress and errors against.
func label(disc *discover.Result, n plan.Node) string {
	switch n.Kind {
	case plan.BuildCStubNode:
		return fmt.Sprintf("%s(%s, stub %d)", n.Kind, disc.Package(n.Package).Fqn, n.StubIndex)
	case plan.ArchiveCStubsNode, plan.GenerateMbtiNode:
		return fmt.Sprintf("%s(%s)", n.Kind, disc.Package(n.Package).Fqn)
	case plan.RunPrebuildNode, plan.RunLexPrebuildNode, plan.RunYaccPrebuildNode:
		return fmt.Sprintf("%s(%s, rule %d)", n.Kind, disc.Package(n.Package).Fqn, n.RuleIndex)
	case plan.BundleNode:
		return fmt.Sprintf("%s(%s)", n.Kind, disc.Modules[n.Module].Source.Name)
	case plan.BuildRuntimeLibNode, plan.BuildDocsNode:
		return n.Kind.String()
	default:
		return fmt.Sprintf("%s(%s)", n.Kind, disc.Package(n.Target.Package).Fqn)
	}
}

// inputsFor accumulates a node's input identifiers: the outputs of every
// node it depends on in the plan graph, plus any implicit config inputs.
func inputsFor(disc *discover.Result, g *plan.Graph, n plan.Node, opts core.BuildOptions) ([]string, error) {
	var inputs []string

	switch n.Kind {
	case plan.CheckNode:
		inputs = append(inputs, g.CheckInfo[n.Key()].Files...)
	case plan.BuildCoreNode:
		inputs = append(inputs, g.BuildCoreInfo[n.Key()].Files...)
	case plan.GenerateTestInfoNode:
		inputs = append(inputs, g.TestInfo[n.Key()].Files...)
	case plan.BuildCStubNode:
		pkg := disc.Package(n.Package)
		if n.StubIndex >= len(pkg.CStubFiles) {
			return nil, fmt.Errorf("%s: stub index %d out of range", pkg.Fqn, n.StubIndex)
		}
		inputs = append(inputs, pkg.CStubFiles[n.StubIndex])
	case plan.BuildRuntimeLibNode:
		inputs = append(inputs, opts.RuntimeCPath)
	case plan.BuildDocsNode:
		inputs = append(inputs, "packages.json")
	}

	for _, e := range g.Edges {
		if e.From != n {
			continue
		}
		inputs = append(inputs, outputsFor(disc, g, e.To, opts)...)
	}

	return inputs, nil
}

// outputsFor is the artifact-path computation for a single node.
func outputsFor(disc *discover.Result, g *plan.Graph, n plan.Node, opts core.BuildOptions) []string {
	switch n.Kind {
	case plan.CheckNode:
		pkg := disc.Package(n.Target.Package)
		return []string{layout.MiPath(opts, pkg.Fqn, n.Target.Kind)}
	case plan.BuildCoreNode:
		pkg := disc.Package(n.Target.Package)
		return []string{layout.MiPath(opts, pkg.Fqn, n.Target.Kind), layout.CorePath(opts, pkg.Fqn, n.Target.Kind)}
	case plan.GenerateTestInfoNode:
		pkg := disc.Package(n.Target.Package)
		return []string{layout.TestDriverPath(opts, pkg.Fqn, n.Target.Kind), layout.TestInfoPath(opts, pkg.Fqn, n.Target.Kind)}
	case plan.LinkCoreNode:
		pkg := disc.Package(n.Target.Package)
		return []string{layout.LinkOutputPath(opts, pkg.Fqn, n.Target.Kind)}
	case plan.MakeExecutableNode:
		pkg := disc.Package(n.Target.Package)
		return []string{layout.ExecutablePath(opts, pkg.Fqn, n.Target.Kind)}
	case plan.BuildCStubNode:
		pkg := disc.Package(n.Package)
		return []string{layout.CStubObjectPath(opts, pkg.Fqn, n.StubIndex)}
	case plan.ArchiveCStubsNode:
		pkg := disc.Package(n.Package)
		return []string{layout.ArchivePath(opts, pkg.Fqn)}
	case plan.BuildRuntimeLibNode:
		return []string{layout.RuntimeLibPath(opts)}
	case plan.BundleNode:
		return []string{layout.BundlePath(opts, disc.Modules[n.Module].Source.Name)}
	case plan.BuildDocsNode:
		return []string{layout.DocsPath(opts)}
	case plan.RunPrebuildNode, plan.RunLexPrebuildNode, plan.RunYaccPrebuildNode:
		if info := g.PrebuildInfo[n.Key()]; info != nil {
			return append([]string(nil), info.Outputs...)
		}
		return nil
	case plan.GenerateMbtiNode:
		pkg := disc.Package(n.Package)
		return []string{layout.MbtiPath(pkg)}
	default:
		return nil // BuildVirtual: consumed in-process, never scheduled as an action
	}
}

// dedupeOrdered interns and de-duplicates a list of identifiers while
// preserving first-occurrence order.
func dedupeOrdered(interner *cmap.Interner, items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		canonical := interner.Intern(item)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

// contentHash derives a per-action fingerprint from its command and ordered
// input/output identifiers, so two runs that would produce byte-identical
// graphs also produce identical hashes.
func contentHash(command string, inputs, outputs []string) string {
	h := blake3.New()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	write(command)
	for _, in := range inputs {
		write(in)
	}
	for _, out := range outputs {
		write(out)
	}
	return hex.EncodeToString(h.Sum(nil))
}
