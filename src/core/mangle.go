package core

import (
	"fmt"
	"strconv"
	"strings"
)

// MangleSymbol and DemangleSymbol implement a round trip between an FQN
// and a native-symbol-safe string: demangling the result of mangling any
// valid name recovers the original, a partial inverse that only holds for
// names the mangler can itself produce. The scheme is a simplified
// length-prefixed encoding (a "_M0F" tag followed by a package path and an
// identifier), used to thread a virtual package's implementor alias into
// the linker's override table.
const manglePrefix = "_M0F"

// MangleSymbol encodes a package path and a bare identifier into a single
// native-symbol-safe string.
func MangleSymbol(pkg string, name string) string {
	var b strings.Builder
	b.WriteString(manglePrefix)
	writeLenPrefixed(&b, pkg)
	b.WriteByte('.')
	writeLenPrefixed(&b, name)
	return b.String()
}

func writeLenPrefixed(b *strings.Builder, s string) {
	fmt.Fprintf(b, "%d_%s", len(s), s)
}

// DemangleSymbol is the inverse of MangleSymbol. It returns ok=false if the
// input was not produced by MangleSymbol: names outside the mangler's
// range do not round-trip, making this only a partial inverse.
func DemangleSymbol(mangled string) (pkg, name string, ok bool) {
	if !strings.HasPrefix(mangled, manglePrefix) {
		return "", "", false
	}
	rest := mangled[len(manglePrefix):]
	pkg, rest, ok = readLenPrefixed(rest)
	if !ok || !strings.HasPrefix(rest, ".") {
		return "", "", false
	}
	rest = rest[1:]
	name, rest, ok = readLenPrefixed(rest)
	if !ok || rest != "" {
		return "", "", false
	}
	return pkg, name, true
}

func readLenPrefixed(s string) (value, rest string, ok bool) {
	idx := strings.IndexByte(s, '_')
	if idx == -1 {
		return "", "", false
	}
	n, err := strconv.Atoi(s[:idx])
	if err != nil || n < 0 {
		return "", "", false
	}
	body := s[idx+1:]
	if len(body) < n {
		return "", "", false
	}
	return body[:n], body[n:], true
}
