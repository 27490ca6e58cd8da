package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenlang/lumenbuild/src/core"
)

func testFqn(t *testing.T, pkgPath string) core.PackageFQN {
	t.Helper()
	mod := core.ModuleSource{Name: core.ParseModuleName("alice/hello"), Origin: core.Origin{Kind: core.OriginLocal}}
	pp, err := core.NewPackagePath(pkgPath)
	if err != nil {
		t.Fatalf("NewPackagePath(%q): %v", pkgPath, err)
	}
	return core.PackageFQN{Module: mod, PackagePath: pp}
}

func testOpts() core.BuildOptions {
	return core.BuildOptions{
		Backend:       core.WasmGC,
		OptLevel:      core.Release,
		RunMode:       core.RunBuild,
		TargetDirRoot: "/target",
		OS:            "linux",
	}
}

func TestMiAndCorePathsShareDirectoryButDifferExtension(t *testing.T) {
	fqn := testFqn(t, "lib")
	opts := testOpts()

	mi := MiPath(opts, fqn, core.Source)
	core_ := CorePath(opts, fqn, core.Source)

	assert.Contains(t, mi, "/target/wasm-gc/release/build/alice/hello/lib/")
	assert.Equal(t, mi[:len(mi)-len(".lmi")]+".core", core_)
}

func TestLinkOutputPathExtensionFollowsBackend(t *testing.T) {
	fqn := testFqn(t, "")
	for backend, ext := range map[core.Backend]string{
		core.Wasm:       ".wasm",
		core.WasmGC:     ".wasm",
		core.Js:         ".js",
		core.NativeC:    ".c",
		core.NativeLLVM: ".wat",
	} {
		opts := testOpts()
		opts.Backend = backend
		path := LinkOutputPath(opts, fqn, core.Source)
		assert.Contains(t, path, ext, "backend %s", backend)
	}
}

func TestExecutablePathAddsExeOnWindows(t *testing.T) {
	fqn := testFqn(t, "")
	opts := testOpts()
	opts.OS = "windows"
	path := ExecutablePath(opts, fqn, core.Source)
	assert.Contains(t, path, ".exe")

	opts.OS = "linux"
	path = ExecutablePath(opts, fqn, core.Source)
	assert.NotContains(t, path, ".exe")
}

func TestArchivePathUsesSharedExtensionWhenNativeSharedRuntime(t *testing.T) {
	fqn := testFqn(t, "lib")
	opts := testOpts()
	opts.NativeSharedRuntime = true
	opts.OS = "darwin"
	assert.Contains(t, ArchivePath(opts, fqn), ".dylib")

	opts.OS = "linux"
	assert.Contains(t, ArchivePath(opts, fqn), ".so")

	opts.NativeSharedRuntime = false
	assert.Contains(t, ArchivePath(opts, fqn), ".a")
}

func TestTestDriverAndInfoPathsVaryByTestKind(t *testing.T) {
	fqn := testFqn(t, "lib")
	opts := testOpts()

	whitebox := TestDriverPath(opts, fqn, core.WhiteboxTest)
	blackbox := TestDriverPath(opts, fqn, core.BlackboxTest)
	assert.Contains(t, whitebox, "whitebox")
	assert.Contains(t, blackbox, "blackbox")
	assert.NotEqual(t, whitebox, blackbox)
}

func TestBundlePathUsesModuleLastSegment(t *testing.T) {
	opts := testOpts()
	path := BundlePath(opts, core.ParseModuleName("alice/hello"))
	assert.Contains(t, path, "hello.core")
}
