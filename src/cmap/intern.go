// Package cmap provides string interning keyed by content hash.
//
// The core here is single-threaded, so this is deliberately not a
// sharded, awaitable concurrent map for a parallel executor; it keeps just
// the hashing idea (github.com/cespare/xxhash/v2) applied to deduplicating
// the strings that flow through every package FQN, build label and command
// line in a build.
package cmap

import (
	"github.com/cespare/xxhash/v2"
)

// An Interner deduplicates strings, returning the same backing string value
// for any two calls with equal content. This matters here because FQNs and
// package paths are constructed afresh many times during discovery and
// solving but are used as map keys and in command lines throughout the rest
// of the pipeline; interning keeps memory flat and equality checks cheap.
type Interner struct {
	strings map[uint64][]string
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{strings: make(map[uint64][]string)}
}

// Intern returns the canonical copy of s, recording s as canonical if this
// is the first time it has been seen.
func (in *Interner) Intern(s string) string {
	h := xxhash.Sum64String(s)
	for _, existing := range in.strings[h] {
		if existing == s {
			return existing
		}
	}
	in.strings[h] = append(in.strings[h], s)
	return s
}

// Hash64 returns the 64-bit content hash of a single string.
func Hash64(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Hash64Multi combines the hashes of several strings into one, order
// sensitive.
func Hash64Multi(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
	}
	return d.Sum64()
}
