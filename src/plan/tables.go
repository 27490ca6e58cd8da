package plan

import "github.com/lumenlang/lumenbuild/src/core"

// BuildTargetInfo is the side-table entry for a Check or BuildCore node: the
// resolved file list from the classifier plus the compilation flags in
// force, populating BuildTargetInfo from the classifier's output.
type BuildTargetInfo struct {
	Files []string
	Flags core.CompilationFlags
}

// TestInfo is the side-table entry for a GenerateTestInfo node: it mirrors
// the target's own file list.
type TestInfo struct {
	Files []string
}

// LinkInfo is the side-table entry for a LinkCore node.
type LinkInfo struct {
	// LinkedOrder is the transitive `.core` dependency closure of the
	// target, topologically sorted dependency-before-dependent, ties
	// broken by FQN string.
	LinkedOrder []core.BuildTarget
	// StubOwners is every package in the closure that owns C stubs.
	StubOwners []core.PackageId
}

// ExecInfo is the side-table entry for a MakeExecutable node.
type ExecInfo struct {
	CC        string
	LinkFlags []string
	Stubs     []core.PackageId
}

// CStubInfo is the side-table entry for a BuildCStub node (StubCount 1) or
// an ArchiveCStubs node (StubCount is the package's stub file count).
type CStubInfo struct {
	StubCount int
}

// PrebuildInfo is the side-table entry for a RunPrebuild/RunLexPrebuild/RunYaccPrebuild node.
type PrebuildInfo struct {
	Command string
	Inputs  []string
	Outputs []string
}

// VirtualInfo is the side-table entry for a BuildVirtual node.
type VirtualInfo struct {
	InterfaceFile string
}

// BundleInfo is the side-table entry for a Bundle node.
type BundleInfo struct {
	Members []core.BuildTarget
}
