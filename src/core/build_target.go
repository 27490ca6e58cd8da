package core

import "fmt"

// PackageId is an opaque handle to a DiscoveredPackage, generated by the
// discoverer as an arena index rather than a direct reference, so cycles
// can be detected explicitly instead of relying on pointer aliasing.
type PackageId int

// InvalidPackageId is the sentinel -1, never assigned to a real package.
const InvalidPackageId PackageId = -1

// TargetKind is one of the five build-target kinds a package can have.
type TargetKind int

const (
	// Source is a package's normal compiled sources.
	Source TargetKind = iota
	// WhiteboxTest is the package's sources plus its `_wbtest` files,
	// compiled with access to package-private names.
	WhiteboxTest
	// BlackboxTest is the package's `_test` files plus generated doctests,
	// compiled against the package's public interface only.
	BlackboxTest
	// InlineTest is Source compiled with test mode enabled (in-package
	// `test` blocks), used by `moon test` style intents that don't need a
	// separate blackbox/whitebox driver.
	InlineTest
	// SubPackage is the package's explicit sub-package file list, used
	// chiefly to break cycles in the standard library.
	SubPackage
)

func (k TargetKind) String() string {
	switch k {
	case Source:
		return "source"
	case WhiteboxTest:
		return "whitebox-test"
	case BlackboxTest:
		return "blackbox-test"
	case InlineTest:
		return "inline-test"
	case SubPackage:
		return "sub-package"
	default:
		return "unknown"
	}
}

// IsTest returns true for any of the three test-flavoured kinds.
func (k TargetKind) IsTest() bool {
	return k == WhiteboxTest || k == BlackboxTest || k == InlineTest
}

// BuildTarget identifies a (package, kind) pair: the unit that the
// dependency solver and build planner actually operate on.
// BuildTarget is a plain comparable value so it can be used directly as a
// map key.
type BuildTarget struct {
	Package PackageId
	Kind    TargetKind
}

// NewBuildTarget constructs a BuildTarget.
func NewBuildTarget(pkg PackageId, kind TargetKind) BuildTarget {
	return BuildTarget{Package: pkg, Kind: kind}
}

func (t BuildTarget) String() string {
	return fmt.Sprintf("pkg#%d@%s", t.Package, t.Kind)
}

// Compare gives a total order over build targets: by package id, then kind.
// Callers that need FQN-based ordering (required for the deterministic
// linker order, invariants) should resolve to FQNs first via a
// *discover.Result and compare those; PackageId order alone is only
// guaranteed stable within a single discovery run, not across runs, so it
// must never leak into emitted output.
func (t BuildTarget) Compare(other BuildTarget) int {
	if t.Package != other.Package {
		return int(t.Package) - int(other.Package)
	}
	return int(t.Kind) - int(other.Kind)
}
