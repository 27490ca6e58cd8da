package classify

import (
	"strings"

	"github.com/lumenlang/lumenbuild/src/core"
)

// FileKind is the per-file classification a regular source file is placed
// into by its filename alone, before any manifest predicate is considered.
type FileKind int

const (
	SourceFile FileKind = iota
	WhiteboxFile
	BlackboxFile
)

func (k FileKind) String() string {
	switch k {
	case WhiteboxFile:
		return "whitebox"
	case BlackboxFile:
		return "blackbox"
	default:
		return "source"
	}
}

var backendTokens = map[string]bool{
	"wasm": true, "wasm-gc": true, "js": true, "native": true, "llvm": true,
}

var optLevelTokens = map[string]bool{"debug": true, "release": true}

// ClassifyFilename decides a regular source file's FileKind and the
// predicate implied by its own name, from the dot-separated stem preceding
// its `.lm` extension :
//
//   - a stem ending in `_test` is Blackbox;
//   - a stem ending in `_wbtest` is Whitebox;
//   - any other dot-component of the stem that names a backend or an
//     opt-level token further constrains the predicate.
func ClassifyFilename(name string) (FileKind, Predicate) {
	stem := strings.TrimSuffix(name, ".lm")
	parts := strings.Split(stem, ".")
	base := parts[0]

	kind := SourceFile
	switch {
	case strings.HasSuffix(base, "_test"):
		kind = BlackboxFile
	case strings.HasSuffix(base, "_wbtest"):
		kind = WhiteboxFile
	}

	pred := Always
	for _, tok := range parts[1:] {
		switch {
		case backendTokens[tok]:
			want, _ := core.ParseBackend(tok)
			p := pred
			pred = And(p, func(b core.Backend, _ core.OptLevel) bool { return b == want })
		case optLevelTokens[tok]:
			want, _ := core.ParseOptLevel(tok)
			p := pred
			pred = And(p, func(_ core.Backend, o core.OptLevel) bool { return o == want })
		}
	}
	return kind, pred
}
