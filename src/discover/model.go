// Package discover implements the package discoverer:
// walking each resolved module's source tree to find packages and classify
// their files.
package discover

import (
	"github.com/lumenlang/lumenbuild/src/core"
)

// ResolvedModule is the discoverer's input for one module: its identity and
// on-disk root ("a resolved module environment"). Resolving
// this from a registry/git/lockfile is an external collaborator; the core
// only ever consumes the result.
type ResolvedModule struct {
	Source core.ModuleSource
	Root   string
}

// Result is the discoverer's output: a flat indexed table of packages plus
// a per-module map from package path to package id.
type Result struct {
	// Packages is indexed by core.PackageId.
	Packages []*core.DiscoveredPackage
	// Modules is indexed by core.ModuleId.
	Modules []ResolvedModule

	// ModuleDeps[moduleId] is the set of module names that module's manifest
	// declares a dependency on (module reachability).
	ModuleDeps []map[string]bool

	// byModule[moduleId][packagePathString] -> PackageId
	byModule []map[string]core.PackageId

	// byFQN maps a package FQN's rendered string to its PackageId, used by
	// the solver's Phase A global lookup and to enforce the
	// "no two discovered packages share an FQN string" invariant during
	// discovery itself.
	byFQN map[string]core.PackageId
}

func newResult() *Result {
	return &Result{byFQN: make(map[string]core.PackageId)}
}

// Package returns the discovered package for the given id.
func (r *Result) Package(id core.PackageId) *core.DiscoveredPackage {
	return r.Packages[id]
}

// PackageByFQN looks up a package by its rendered FQN string.
func (r *Result) PackageByFQN(fqn string) (core.PackageId, bool) {
	id, ok := r.byFQN[fqn]
	return id, ok
}

// PackageInModule looks up a package by module id and package path string.
func (r *Result) PackageInModule(mod core.ModuleId, pathString string) (core.PackageId, bool) {
	if int(mod) >= len(r.byModule) {
		return core.InvalidPackageId, false
	}
	id, ok := r.byModule[mod][pathString]
	return id, ok
}

func (r *Result) addModule() core.ModuleId {
	id := core.ModuleId(len(r.byModule))
	r.byModule = append(r.byModule, make(map[string]core.PackageId))
	r.ModuleDeps = append(r.ModuleDeps, nil)
	return id
}

// ReachableFrom reports whether the module named target is reachable from
// the module named from, per the declared dependency sets recorded during
// discovery. A module always reaches itself.
func (r *Result) ReachableFrom(from, target core.ModuleId) bool {
	if from == target {
		return true
	}
	if int(from) >= len(r.ModuleDeps) {
		return false
	}
	deps := r.ModuleDeps[from]
	if deps == nil {
		return false
	}
	return deps[r.Modules[target].Source.Name.String()]
}

func (r *Result) addPackage(pkg *core.DiscoveredPackage) error {
	fqn := pkg.Fqn.String()
	if existing, present := r.byFQN[fqn]; present {
		return &core.ConflictingFQNError{
			FQN:    fqn,
			First:  r.Packages[existing].Root,
			Second: pkg.Root,
		}
	}
	pkg.Id = core.PackageId(len(r.Packages))
	r.Packages = append(r.Packages, pkg)
	r.byFQN[fqn] = pkg.Id
	r.byModule[pkg.Module][pkg.Fqn.PackagePath.String()] = pkg.Id
	return nil
}
