// Package layout computes canonical artifact paths: a
// pure function from (build target, node kind, options) to a path. Nothing
// here touches the filesystem; it only renders strings.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lumenlang/lumenbuild/src/core"
)

// TargetDir is the per-build root: <target-dir-root>/<backend>/<opt-level>/<run-mode>.
func TargetDir(opts core.BuildOptions) string {
	return filepath.Join(opts.TargetDirRoot, opts.Backend.String(), opts.OptLevel.String(), opts.RunMode.String())
}

// PackageDir is a package's artifact directory under a target dir:
// <target-dir>/<module-fqn>/<package-path-with-`/`-replaced-by-`+`>.
func PackageDir(targetDir string, fqn core.PackageFQN) string {
	if fqn.PackagePath.IsRoot() {
		return filepath.Join(targetDir, fqn.Module.Name.String())
	}
	flattened := strings.ReplaceAll(fqn.PackagePath.String(), "/", "+")
	return filepath.Join(targetDir, fqn.Module.Name.String(), flattened)
}

// testSuffix renders the per-test-kind artifact suffix.
func testSuffix(kind core.TargetKind) string {
	switch kind {
	case core.WhiteboxTest:
		return "__whitebox_test"
	case core.BlackboxTest:
		return "__blackbox_test"
	case core.InlineTest:
		return "__internal_test"
	default:
		return ""
	}
}

func pkgBase(fqn core.PackageFQN, kind core.TargetKind) string {
	return fqn.ShortAlias() + testSuffix(kind)
}

// MiPath is the `.lmi` interface output of Check and BuildCore.
func MiPath(opts core.BuildOptions, fqn core.PackageFQN, kind core.TargetKind) string {
	dir := PackageDir(TargetDir(opts), fqn)
	return filepath.Join(dir, pkgBase(fqn, kind)+".lmi")
}

// CorePath is BuildCore's `.core` output.
func CorePath(opts core.BuildOptions, fqn core.PackageFQN, kind core.TargetKind) string {
	dir := PackageDir(TargetDir(opts), fqn)
	return filepath.Join(dir, pkgBase(fqn, kind)+".core")
}

// linkExtensions maps a backend to LinkCore's output extension:
// `.wasm` | `.js` | `.c` | `.wat` per backend.
var linkExtensions = map[core.Backend]string{
	core.Wasm:       ".wasm",
	core.WasmGC:     ".wasm",
	core.Js:         ".js",
	core.NativeC:    ".c",
	core.NativeLLVM: ".wat",
}

// LinkOutputPath is LinkCore's output for the given target.
func LinkOutputPath(opts core.BuildOptions, fqn core.PackageFQN, kind core.TargetKind) string {
	dir := PackageDir(TargetDir(opts), fqn)
	return filepath.Join(dir, pkgBase(fqn, kind)+linkExtensions[opts.Backend])
}

// ExecutablePath is MakeExecutable's output: `.exe` on
// Windows, no extension elsewhere.
func ExecutablePath(opts core.BuildOptions, fqn core.PackageFQN, kind core.TargetKind) string {
	dir := PackageDir(TargetDir(opts), fqn)
	name := pkgBase(fqn, kind)
	if opts.OS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

// CStubObjectPath is one BuildCStub(p, i) output.
func CStubObjectPath(opts core.BuildOptions, fqn core.PackageFQN, stubIndex int) string {
	dir := PackageDir(TargetDir(opts), fqn)
	ext := ".o"
	if opts.OS == "windows" {
		ext = ".obj"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_stub_%d%s", fqn.ShortAlias(), stubIndex, ext))
}

// ArchivePath is ArchiveCStubs(p)'s output: a static archive, or a shared
// object when the build uses the shared-runtime native mode.
func ArchivePath(opts core.BuildOptions, fqn core.PackageFQN) string {
	dir := PackageDir(TargetDir(opts), fqn)
	var ext string
	switch {
	case opts.NativeSharedRuntime && opts.OS == "windows":
		ext = ".dll"
	case opts.NativeSharedRuntime && opts.OS == "darwin":
		ext = ".dylib"
	case opts.NativeSharedRuntime:
		ext = ".so"
	case opts.OS == "windows":
		ext = ".lib"
	default:
		ext = ".a"
	}
	return filepath.Join(dir, fqn.ShortAlias()+"_stubs"+ext)
}

// TestDriverPath is GenerateTestInfo's generated driver source.
func TestDriverPath(opts core.BuildOptions, fqn core.PackageFQN, kind core.TargetKind) string {
	dir := PackageDir(TargetDir(opts), fqn)
	return filepath.Join(dir, fmt.Sprintf("__generated_driver_for_%s_test.lm", testKindWord(kind)))
}

// TestInfoPath is GenerateTestInfo's generated metadata JSON.
func TestInfoPath(opts core.BuildOptions, fqn core.PackageFQN, kind core.TargetKind) string {
	dir := PackageDir(TargetDir(opts), fqn)
	return filepath.Join(dir, fmt.Sprintf("__%s_test_info.json", testKindWord(kind)))
}

func testKindWord(kind core.TargetKind) string {
	switch kind {
	case core.WhiteboxTest:
		return "whitebox"
	case core.BlackboxTest:
		return "blackbox"
	default:
		return "internal"
	}
}

// BundlePath is Bundle(m)'s output: <module-short-name>.core under a bundle subtree.
func BundlePath(opts core.BuildOptions, moduleName core.ModuleName) string {
	dir := filepath.Join(opts.TargetDirRoot, opts.Backend.String(), opts.OptLevel.String(), "bundle")
	return filepath.Join(dir, moduleName.LastSegment()+".core")
}

// RuntimeLibPath is BuildRuntimeLib's output.
func RuntimeLibPath(opts core.BuildOptions) string {
	dir := TargetDir(opts)
	if opts.NativeSharedRuntime {
		name := "libruntime.so"
		if opts.OS == "darwin" {
			name = "libruntime.dylib"
		} else if opts.OS == "windows" {
			name = "runtime.dll"
		}
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, "runtime.o")
}

// MbtiPath is GenerateMbti's output: it lives in the source tree itself,
// out-of-band from the target directory.
func MbtiPath(pkg *core.DiscoveredPackage) string {
	return filepath.Join(pkg.Root, pkg.Fqn.ShortAlias()+".lmti")
}

// DocsPath is BuildDocs' single output directory.
func DocsPath(opts core.BuildOptions) string {
	return filepath.Join(opts.TargetDirRoot, "docs")
}
