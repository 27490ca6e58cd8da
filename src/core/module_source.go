// Package core contains the name model (module source identity, package
// paths and FQNs), the build-target and build-plan-node vocabulary, and the
// small set of cross-cutting utilities (the repo lock, build options,
// structured errors) shared by every later phase of the pipeline.
package core

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/lumenlang/lumenbuild/src/cli/logging"
)

var log = logging.Log

// OriginKind distinguishes where a module's sources physically come from.
// The core never fetches anything; it only needs to know the kind to decide
// things like "is this the standard library" and to render a stable
// identity string.
type OriginKind int

const (
	// OriginRegistry is a module resolved from the default package registry.
	OriginRegistry OriginKind = iota
	// OriginGit is a module pinned to a git URL.
	OriginGit
	// OriginLocal is a module living at a local filesystem path (a path
	// dependency or the root module itself).
	OriginLocal
	// OriginStdlib is the language's own standard library.
	OriginStdlib
	// OriginSingleFile is the synthetic module wrapping a single source
	// file built outside of any module tree (single-file mode).
	OriginSingleFile
)

func (k OriginKind) String() string {
	switch k {
	case OriginRegistry:
		return "registry"
	case OriginGit:
		return "git"
	case OriginLocal:
		return "local"
	case OriginStdlib:
		return "stdlib"
	case OriginSingleFile:
		return "single-file"
	default:
		return "unknown"
	}
}

// Origin carries the kind-specific payload for a module's source: an
// optional registry name override, a git URL, or a local/single-file path.
// Exactly the field matching Kind is meaningful; the others are zero.
type Origin struct {
	Kind OriginKind
	// RegistryName is set only for OriginRegistry when the module was
	// resolved from a non-default registry.
	RegistryName string
	// URL is set only for OriginGit.
	URL string
	// Path is set for OriginLocal and OriginSingleFile.
	Path string
}

// String renders a stable, human-readable form of the origin, used only for
// diagnostics; it is not part of module identity comparison (Origin is
// compared structurally as part of ModuleSource).
func (o Origin) String() string {
	switch o.Kind {
	case OriginRegistry:
		if o.RegistryName != "" {
			return fmt.Sprintf("registry(%s)", o.RegistryName)
		}
		return "registry"
	case OriginGit:
		return fmt.Sprintf("git(%s)", o.URL)
	case OriginLocal:
		return fmt.Sprintf("local(%s)", o.Path)
	case OriginStdlib:
		return "stdlib"
	case OriginSingleFile:
		return fmt.Sprintf("single-file(%s)", o.Path)
	default:
		return "?"
	}
}

// ModuleName is a module's name, split into the username and unqualified
// parts. The unqualified part may itself contain `/`-
// separated segments (e.g. `alice/collections/json`).
type ModuleName struct {
	Username    string
	Unqualified string
}

// String renders the module name in `username/unqualified` form, or just
// `unqualified` if there is no username (the stdlib and some local modules
// have none).
func (n ModuleName) String() string {
	if n.Username == "" {
		return n.Unqualified
	}
	return n.Username + "/" + n.Unqualified
}

// LastSegment returns the final `/`-delimited segment of the unqualified
// part, used as a module's default short alias.
func (n ModuleName) LastSegment() string {
	parts := strings.Split(n.Unqualified, "/")
	return parts[len(parts)-1]
}

// ParseModuleName splits a module name string of the form
// `username/unqualified/with/segments` into its parts. A name with no `/`
// has an empty username.
func ParseModuleName(s string) ModuleName {
	idx := strings.IndexByte(s, '/')
	if idx == -1 {
		return ModuleName{Unqualified: s}
	}
	return ModuleName{Username: s[:idx], Unqualified: s[idx+1:]}
}

// ModuleSource is the identity of a module: its name, version and origin.
// Two modules are the same module iff all three fields compare equal.
// Version is optional (local path modules commonly omit it);
// a nil Version always compares unequal to any non-nil Version other than
// another nil, matching "local modules are never interchangeable with a
// registry version of the same name".
type ModuleSource struct {
	Name    ModuleName
	Version *semver.Version
	Origin  Origin
}

// Equal reports whether two module sources refer to the same module.
func (m ModuleSource) Equal(other ModuleSource) bool {
	if m.Name != other.Name || m.Origin != other.Origin {
		return false
	}
	if (m.Version == nil) != (other.Version == nil) {
		return false
	}
	return m.Version == nil || m.Version.Equal(other.Version)
}

// Compare orders module sources deterministically: by name, then by
// version (nil sorts first), then by origin kind. Used wherever a stable
// id order is required.
func (m ModuleSource) Compare(other ModuleSource) int {
	if m.Name.String() != other.Name.String() {
		return strings.Compare(m.Name.String(), other.Name.String())
	}
	switch {
	case m.Version == nil && other.Version == nil:
		// fall through to origin comparison
	case m.Version == nil:
		return -1
	case other.Version == nil:
		return 1
	default:
		if c := m.Version.Compare(other.Version); c != 0 {
			return c
		}
	}
	if m.Origin.Kind != other.Origin.Kind {
		return int(m.Origin.Kind) - int(other.Origin.Kind)
	}
	return strings.Compare(m.Origin.String(), other.Origin.String())
}

// String renders `<name>@<version>` or just `<name>` if unversioned.
func (m ModuleSource) String() string {
	if m.Version == nil {
		return m.Name.String()
	}
	return fmt.Sprintf("%s@%s", m.Name.String(), m.Version.String())
}

// IsStdlib returns true if this module is the standard library.
func (m ModuleSource) IsStdlib() bool {
	return m.Origin.Kind == OriginStdlib
}
