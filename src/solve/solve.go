// Package solve implements the dependency solver: Phases
// A-E turning each package's manifest-declared imports into a labelled edge
// set over build targets, plus the virtual-package implement/override
// tables the planner consults later.
package solve

import (
	"fmt"

	"github.com/lumenlang/lumenbuild/src/cli/logging"
	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/discover"
)

var log = logging.Log

// Edge is one dependency edge: a source build target imports another
// package (optionally its sub-package variant) under some alias, labelled
// with the import list it came from.
type Edge struct {
	From       core.BuildTarget
	To         core.BuildTarget
	Alias      string
	Kind       core.ImportKind
	SubPackage bool
}

// Solution is the solver's full output.
type Solution struct {
	Edges []Edge

	// Implementors maps a package implementing some virtual package to the
	// virtual package it implements.
	Implementors map[core.PackageId]core.PackageId

	// Overrides maps a virtual package to the implementor selected to
	// override its default, recorded once per build.
	Overrides map[core.PackageId]core.PackageId
}

// EdgesFrom returns every edge originating at the given build target, in
// manifest declaration order.
func (s *Solution) EdgesFrom(t core.BuildTarget) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.From == t {
			out = append(out, e)
		}
	}
	return out
}

// Solve runs phases A through E over a completed discovery result.
func Solve(disc *discover.Result) (*Solution, error) {
	sol := &Solution{
		Implementors: make(map[core.PackageId]core.PackageId),
		Overrides:    make(map[core.PackageId]core.PackageId),
	}

	allFQNs := make([]string, len(disc.Packages))
	for i, pkg := range disc.Packages {
		allFQNs[i] = pkg.Fqn.String()
	}

	// Phase A is the global FQN map the discoverer already built and
	// enforced uniqueness over; disc.PackageByFQN serves it directly.

	// Phase B: resolve `implement` before any import is processed, since
	// Phase C and Phase E both need to see it.
	for _, pkg := range disc.Packages {
		if pkg.Manifest.Implement == "" {
			continue
		}
		targetId, ok := disc.PackageByFQN(pkg.Manifest.Implement)
		if !ok {
			return nil, &core.UnknownImportError{
				Importer:   pkg.Fqn.String(),
				Import:     pkg.Manifest.Implement,
				Suggestion: suggestionMessage(pkg.Manifest.Implement, allFQNs),
			}
		}
		target := disc.Package(targetId)
		if !target.Manifest.IsVirtual() {
			return nil, &core.NotVirtualError{Implementor: pkg.Fqn.String(), Target: target.Fqn.String()}
		}
		sol.Implementors[pkg.Id] = targetId
	}

	// Phase C: walk each package's four import lists.
	for _, pkg := range disc.Packages {
		for _, kind := range []core.ImportKind{core.RegularImport, core.WhiteboxImport, core.BlackboxImport, core.SubPackageImport} {
			for _, imp := range pkg.Manifest.ImportsFor(kind) {
				if err := addImportEdges(disc, sol, pkg, kind, imp, allFQNs); err != nil {
					return nil, err
				}
			}
		}
	}

	// Phase D: implicit Blackbox -> Source edge, with alias-clash repair.
	for _, pkg := range disc.Packages {
		addImplicitBlackboxEdge(disc, sol, pkg)
	}

	// Phase E: resolve overrides.
	for _, pkg := range disc.Packages {
		for _, ovr := range pkg.Manifest.Overrides {
			implId, ok := disc.PackageByFQN(ovr)
			if !ok {
				return nil, &core.UnknownImportError{
					Importer:   pkg.Fqn.String(),
					Import:     ovr,
					Suggestion: suggestionMessage(ovr, allFQNs),
				}
			}
			virtualId, implements := sol.Implementors[implId]
			if !implements {
				return nil, fmt.Errorf("%s: override %s does not implement any virtual package", pkg.Fqn, ovr)
			}
			if existing, present := sol.Overrides[virtualId]; present && existing != implId {
				return nil, &core.ConflictingOverrideError{
					Virtual: disc.Package(virtualId).Fqn.String(),
					First:   disc.Package(existing).Fqn.String(),
					Second:  disc.Package(implId).Fqn.String(),
				}
			}
			sol.Overrides[virtualId] = implId
		}
	}

	return sol, nil
}

func addImportEdges(disc *discover.Result, sol *Solution, pkg *core.DiscoveredPackage, kind core.ImportKind, imp core.Import, allFQNs []string) error {
	targetId, ok := disc.PackageByFQN(imp.Path)
	if !ok {
		return &core.UnknownImportError{
			Importer:   pkg.Fqn.String(),
			Import:     imp.Path,
			Suggestion: suggestionMessage(imp.Path, allFQNs),
		}
	}
	target := disc.Package(targetId)

	if imp.SubPackage && pkg.Module != target.Module {
		return &core.CrossModuleSubPackageError{Importer: pkg.Fqn.String(), Target: target.Fqn.String()}
	}
	if !disc.ReachableFrom(pkg.Module, target.Module) {
		log.Warning("%s: importing %s, whose module is not declared as a dependency", pkg.Fqn, target.Fqn)
	}

	alias := imp.Alias
	if alias == "" {
		alias = target.Fqn.ShortAlias()
	}

	depKind := core.Source
	if imp.SubPackage {
		depKind = core.SubPackage
	}
	to := core.BuildTarget{Package: targetId, Kind: depKind}

	for _, fromKind := range kind.TargetsFor() {
		from := core.BuildTarget{Package: pkg.Id, Kind: fromKind}
		sol.Edges = append(sol.Edges, Edge{From: from, To: to, Alias: alias, Kind: kind, SubPackage: imp.SubPackage})
	}
	return nil
}

// addImplicitBlackboxEdge adds the implicit Blackbox->Source self edge and
// repairs any alias clash against an existing blackbox import.
func addImplicitBlackboxEdge(disc *discover.Result, sol *Solution, pkg *core.DiscoveredPackage) {
	from := core.BuildTarget{Package: pkg.Id, Kind: core.BlackboxTest}
	to := core.BuildTarget{Package: pkg.Id, Kind: core.Source}
	alias := pkg.Fqn.ShortAlias()

	for i := range sol.Edges {
		e := &sol.Edges[i]
		if e.From != from || e.Kind != core.BlackboxImport || e.Alias != alias {
			continue
		}
		if e.To == to {
			// Same alias, same target: not actually a clash.
			continue
		}
		log.Warning("%s: blackbox import alias %q collides with the implicit self import; renaming it to its full name", pkg.Fqn, alias)
		e.Alias = disc.Package(e.To.Package).Fqn.String()
	}

	sol.Edges = append(sol.Edges, Edge{From: from, To: to, Alias: alias, Kind: core.BlackboxImport})
}
