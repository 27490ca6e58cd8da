package core

import "fmt"

// PackageFQN is a package's fully-qualified name: a module source plus a
// package path within that module. Package FQNs are globally
// unique within one build; two discovered packages with the same FQN string
// is a fatal error (enforced by the discoverer, not by this type).
type PackageFQN struct {
	Module      ModuleSource
	PackagePath PackagePath
}

// String renders `<module-name>[/<package-path>]`. Note this intentionally
// omits the module version, keeping to package/name only: FQN collisions
// are checked on this *rendered* string, not on the richer struct, so two
// different modules must never resolve to the same FQN string ("two
// modules resolve to FQN alice/foo/bar").
func (f PackageFQN) String() string {
	if f.PackagePath.IsRoot() {
		return f.Module.Name.String()
	}
	return fmt.Sprintf("%s/%s", f.Module.Name.String(), f.PackagePath.String())
}

// ShortAlias returns the default import alias for this package: its last
// package-path segment, falling back to the module's last name segment for
// a root package.
func (f PackageFQN) ShortAlias() string {
	if !f.PackagePath.IsRoot() {
		return f.PackagePath.LastSegment()
	}
	return f.Module.Name.LastSegment()
}

// Compare gives a total order over FQNs: by module, then by package path.
func (f PackageFQN) Compare(other PackageFQN) int {
	if c := f.Module.Compare(other.Module); c != 0 {
		return c
	}
	return f.PackagePath.Compare(other.PackagePath)
}

// Equal reports whether two FQNs denote the same package (by full struct
// identity, not just the rendered string — see the String doc comment).
func (f PackageFQN) Equal(other PackageFQN) bool {
	return f.Module.Equal(other.Module) && f.PackagePath.Equal(other.PackagePath)
}
