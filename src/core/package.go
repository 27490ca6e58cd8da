package core

// DiscoveredPackage is the discoverer's output for a single package:
// its root path, owning module, FQN, manifest and classified file lists
// ("Discovered package").
type DiscoveredPackage struct {
	Id   PackageId
	Root string // filesystem path to the package directory
	Fqn  PackageFQN

	// Module is the id of the owning module, as assigned by the discover
	// result's module table; kept alongside Fqn.Module (the value) so
	// callers that only have a PackageId can still answer "which module".
	Module ModuleId

	IsSingleFile bool
	Manifest     PackageManifest

	// File lists, always sorted for deterministic output.
	RegularFiles []string // .lm
	LexerFiles   []string // .lml
	ParserFiles  []string // .lmy
	MarkdownDocs []string // .lm.md

	// CStubFiles is populated from the manifest's native-stub list, not by
	// scanning the directory.
	CStubFiles []string

	// VirtualInterfaceFile is set only for virtual packages: the resolved
	// path to their `.lmti` interface file.
	VirtualInterfaceFile string
}

// ModuleId is an opaque handle to a resolved module within one build,
// assigned by the discoverer in the order modules are iterated.
type ModuleId int

// InvalidModuleId is the sentinel -1, never assigned to a real module.
const InvalidModuleId ModuleId = -1

// AllSourceFiles returns the package's regular, lexer, parser and markdown
// files concatenated — the full set of files the discoverer classified as
// belonging to this package, before the conditional classifier narrows them
// per build target.
func (p *DiscoveredPackage) AllSourceFiles() []string {
	all := make([]string, 0, len(p.RegularFiles)+len(p.LexerFiles)+len(p.ParserFiles)+len(p.MarkdownDocs))
	all = append(all, p.RegularFiles...)
	all = append(all, p.LexerFiles...)
	all = append(all, p.ParserFiles...)
	all = append(all, p.MarkdownDocs...)
	return all
}

// HasCStubs reports whether this package has any declared C stub files.
func (p *DiscoveredPackage) HasCStubs() bool {
	return len(p.CStubFiles) > 0
}

// Target returns the BuildTarget for this package at the given kind.
func (p *DiscoveredPackage) Target(kind TargetKind) BuildTarget {
	return BuildTarget{Package: p.Id, Kind: kind}
}
