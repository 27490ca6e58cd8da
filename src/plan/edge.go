package plan

// EdgeKind labels a build-plan edge with which artifact(s) of the
// dependency the dependent actually needs.
type EdgeKind struct {
	// AllFiles is set for Check's dependency edges: the dependent needs
	// every file the dependency's own files list produces.
	AllFiles bool
	// Mi is set when the dependent needs the dependency's `.lmi` interface.
	Mi bool
	// Core is set when the dependent needs the dependency's `.core` object.
	Core bool
}

// Merge ORs two edge kinds together, used by postprocess coalescing
// when two edges between the same pair of nodes collapse.
func (k EdgeKind) Merge(other EdgeKind) EdgeKind {
	return EdgeKind{
		AllFiles: k.AllFiles || other.AllFiles,
		Mi:       k.Mi || other.Mi,
		Core:     k.Core || other.Core,
	}
}

var (
	allFilesEdge  = EdgeKind{AllFiles: true}
	miOnlyEdge    = EdgeKind{Mi: true}
	coreOnlyEdge  = EdgeKind{Core: true}
	structureEdge = EdgeKind{} // a plan-graph dependency that carries no file-kind meaning
)

// Edge is one dependency edge of the build-plan graph.
type Edge struct {
	From, To Node
	Kind     EdgeKind
}
