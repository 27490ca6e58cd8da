// Package plan implements the build planner: a
// worklist-driven fixpoint that expands a set of user intents into a fully
// populated build-plan graph of typed nodes and edges, ready for the
// lowerer.
package plan

import (
	"fmt"

	"github.com/lumenlang/lumenbuild/src/core"
)

// NodeKind is one of the build-plan node variants.
type NodeKind int

const (
	CheckNode NodeKind = iota
	BuildCoreNode
	BuildCStubNode
	ArchiveCStubsNode
	LinkCoreNode
	MakeExecutableNode
	GenerateTestInfoNode
	GenerateMbtiNode
	BundleNode
	BuildRuntimeLibNode
	BuildVirtualNode
	RunPrebuildNode
	RunLexPrebuildNode
	RunYaccPrebuildNode
	BuildDocsNode
)

func (k NodeKind) String() string {
	switch k {
	case CheckNode:
		return "Check"
	case BuildCoreNode:
		return "BuildCore"
	case BuildCStubNode:
		return "BuildCStub"
	case ArchiveCStubsNode:
		return "ArchiveCStubs"
	case LinkCoreNode:
		return "LinkCore"
	case MakeExecutableNode:
		return "MakeExecutable"
	case GenerateTestInfoNode:
		return "GenerateTestInfo"
	case GenerateMbtiNode:
		return "GenerateMbti"
	case BundleNode:
		return "Bundle"
	case BuildRuntimeLibNode:
		return "BuildRuntimeLib"
	case BuildVirtualNode:
		return "BuildVirtual"
	case RunPrebuildNode:
		return "RunPrebuild"
	case RunLexPrebuildNode:
		return "RunLexPrebuild"
	case RunYaccPrebuildNode:
		return "RunYaccPrebuild"
	case BuildDocsNode:
		return "BuildDocs"
	default:
		return "unknown"
	}
}

// Node is one vertex of the build-plan graph. Only the fields relevant to
// its Kind are meaningful; unused fields are left zero.
type Node struct {
	Kind NodeKind

	// Target is meaningful for Check, BuildCore, LinkCore, MakeExecutable,
	// GenerateTestInfo.
	Target core.BuildTarget

	// Package is meaningful for BuildCStub, ArchiveCStubs, BuildVirtual,
	// GenerateMbti, and the three prebuild variants.
	Package core.PackageId

	// Module is meaningful for Bundle.
	Module core.ModuleId

	// StubIndex is meaningful for BuildCStub (i in 0..|c_stub_files|).
	StubIndex int

	// RuleIndex selects which of a package manifest's pre-build rules a
	// RunPrebuild/RunLexPrebuild/RunYaccPrebuild node executes.
	RuleIndex int
}

// Key is a stable, comparable identity for use as a map key.
func (n Node) Key() string {
	return fmt.Sprintf("%s|%d|%d|%d|%d|%d|%d", n.Kind, n.Target.Package, n.Target.Kind, n.Package, n.Module, n.StubIndex, n.RuleIndex)
}

func (n Node) String() string {
	switch n.Kind {
	case BuildCStubNode:
		return fmt.Sprintf("%s(pkg#%d, %d)", n.Kind, n.Package, n.StubIndex)
	case ArchiveCStubsNode, BuildVirtualNode, GenerateMbtiNode:
		return fmt.Sprintf("%s(pkg#%d)", n.Kind, n.Package)
	case RunPrebuildNode, RunLexPrebuildNode, RunYaccPrebuildNode:
		return fmt.Sprintf("%s(pkg#%d, rule %d)", n.Kind, n.Package, n.RuleIndex)
	case BundleNode:
		return fmt.Sprintf("%s(mod#%d)", n.Kind, n.Module)
	case BuildRuntimeLibNode, BuildDocsNode:
		return n.Kind.String()
	default:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Target)
	}
}
