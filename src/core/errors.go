package core

import "fmt"

// ConflictingFQNError is returned when two discovered packages resolve to
// the same FQN string. It is fatal: discovery returns
// no result and the build emits no action graph.
type ConflictingFQNError struct {
	FQN          string
	First, Second string // package directory roots
}

func (e *ConflictingFQNError) Error() string {
	return fmt.Sprintf("conflicting package name %q: both %s and %s resolve to it", e.FQN, e.First, e.Second)
}

// ManifestError wraps a failure to read or parse a module or package
// manifest.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Err)
}
func (e *ManifestError) Unwrap() error { return e.Err }

// ModuleNameMismatchError fires when a module's manifest name disagrees
// with the name the resolved module environment gave it.
type ModuleNameMismatchError struct {
	Root, ManifestName, ResolvedName string
}

func (e *ModuleNameMismatchError) Error() string {
	return fmt.Sprintf("module at %s declares name %q but was resolved as %q", e.Root, e.ManifestName, e.ResolvedName)
}

// InvalidStubPathError fires when a declared C-stub path escapes the
// package directory.
type InvalidStubPathError struct {
	Package, Path string
}

func (e *InvalidStubPathError) Error() string {
	return fmt.Sprintf("package %s declares native-stub %q which escapes the package directory", e.Package, e.Path)
}

// MissingVirtualInterfaceError fires when a virtual package has no `.lmti`
// interface file.
type MissingVirtualInterfaceError struct {
	Package string
}

func (e *MissingVirtualInterfaceError) Error() string {
	return fmt.Sprintf("virtual package %s has no interface file (expected pkg.lmti or <alias>.lmti)", e.Package)
}

// UnknownImportError fires when an import string doesn't resolve to any
// discovered package.
type UnknownImportError struct {
	Importer, Import string
	Suggestion       string
}

func (e *UnknownImportError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("%s: unknown import %q", e.Importer, e.Import)
	}
	return fmt.Sprintf("%s: unknown import %q%s", e.Importer, e.Import, e.Suggestion)
}

// NotVirtualError fires when a package's `implement` field names a package
// that isn't virtual.
type NotVirtualError struct {
	Implementor, Target string
}

func (e *NotVirtualError) Error() string {
	return fmt.Sprintf("%s declares implement = %s, but %s is not a virtual package", e.Implementor, e.Target, e.Target)
}

// ConflictingOverrideError fires when two overrides target the same
// virtual package.
type ConflictingOverrideError struct {
	Virtual, First, Second string
}

func (e *ConflictingOverrideError) Error() string {
	return fmt.Sprintf("conflicting overrides for virtual package %s: both %s and %s", e.Virtual, e.First, e.Second)
}

// NoImplementorError fires at plan time when a virtual package has neither
// a default implementation nor an override reaching it in the link closure.
type NoImplementorError struct {
	Virtual string
}

func (e *NoImplementorError) Error() string {
	return fmt.Sprintf("virtual package %s has no default implementation and no implementor was selected", e.Virtual)
}

// CrossModuleSubPackageError fires when a SubPackage target is imported
// from outside its owning module. This is a hard error, not a warning.
type CrossModuleSubPackageError struct {
	Importer, Target string
}

func (e *CrossModuleSubPackageError) Error() string {
	return fmt.Sprintf("%s: cannot import sub-package %s across module boundaries", e.Importer, e.Target)
}

// InvariantViolation is panicked (never returned) when an internal
// invariant the planner or lowerer relies on doesn't hold — these
// correspond to the "internal-invariant" error kind.
type InvariantViolation struct {
	Where   string
	Node    fmt.Stringer
	Message string
	// CallSites records the need_node call sites for Node, when the debug
	// assertion build flag recorded them (debug aid).
	CallSites []string
}

func (e *InvariantViolation) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("internal invariant violated in %s: %s", e.Where, e.Message)
	}
	return fmt.Sprintf("internal invariant violated in %s for node %s: %s", e.Where, e.Node, e.Message)
}
