package core

import (
	"fmt"
	"strings"
)

// PackagePath is an ordered, possibly empty sequence of path segments.
// The empty path denotes a module's root package. It is
// always stored normalized: no `.`, `..` or empty segments.
type PackagePath struct {
	segments []string
}

// RootPackage is the empty package path, denoting a module's root package.
var RootPackage = PackagePath{}

// NewPackagePath normalizes and validates a `/`-separated package path
// string. It rejects `.`, `..` and empty segments.
func NewPackagePath(s string) (PackagePath, error) {
	if s == "" {
		return RootPackage, nil
	}
	parts := strings.Split(s, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "":
			return PackagePath{}, fmt.Errorf("invalid package path %q: empty segment", s)
		case ".", "..":
			return PackagePath{}, fmt.Errorf("invalid package path %q: %q is not allowed", s, p)
		}
		segments = append(segments, p)
	}
	return PackagePath{segments: segments}, nil
}

// MustPackagePath is NewPackagePath but panics on error; for use with
// literal paths known to be valid (tests, constants).
func MustPackagePath(s string) PackagePath {
	p, err := NewPackagePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path back to its `/`-separated form. Parsing then
// serializing a package path yields the same string.
func (p PackagePath) String() string {
	return strings.Join(p.segments, "/")
}

// IsRoot returns true if this is a module's root package.
func (p PackagePath) IsRoot() bool {
	return len(p.segments) == 0
}

// Segments returns the path's segments. The returned slice must not be
// mutated by the caller.
func (p PackagePath) Segments() []string {
	return p.segments
}

// LastSegment returns the final segment, or "" for the root package.
func (p PackagePath) LastSegment() string {
	if p.IsRoot() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Join appends a segment, returning a new PackagePath.
func (p PackagePath) Join(segment string) PackagePath {
	segments := make([]string, len(p.segments)+1)
	copy(segments, p.segments)
	segments[len(p.segments)] = segment
	return PackagePath{segments: segments}
}

// Compare provides a total order over package paths, segment by segment,
// shorter-is-less on common prefix (used for deterministic sorting).
func (p PackagePath) Compare(other PackagePath) int {
	for i := 0; i < len(p.segments) && i < len(other.segments); i++ {
		if c := strings.Compare(p.segments[i], other.segments[i]); c != 0 {
			return c
		}
	}
	return len(p.segments) - len(other.segments)
}

// Equal reports structural equality.
func (p PackagePath) Equal(other PackagePath) bool {
	return p.String() == other.String()
}
