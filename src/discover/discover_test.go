package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlang/lumenbuild/src/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func moduleSource(t *testing.T, name string) core.ModuleSource {
	t.Helper()
	return core.ModuleSource{Name: core.ParseModuleName(name), Origin: core.Origin{Kind: core.OriginLocal}}
}

func TestDiscoverFindsPackagesAndClassifiesFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(root, PackageManifestName), `{"is-main": true}`)
	writeFile(t, filepath.Join(root, "main.lm"), "")
	writeFile(t, filepath.Join(root, "README.lm.md"), "")
	writeFile(t, filepath.Join(root, "lib", PackageManifestName), `{}`)
	writeFile(t, filepath.Join(root, "lib", "util.lm"), "")
	writeFile(t, filepath.Join(root, "lib", "grammar.lmy"), "")
	writeFile(t, filepath.Join(root, "lib", "tokens.lml"), "")
	writeFile(t, filepath.Join(root, "target", PackageManifestName), `{}`)

	result, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/hello"), Root: root}})
	require.NoError(t, err)
	require.Len(t, result.Packages, 2)

	rootId, ok := result.PackageByFQN("alice/hello")
	require.True(t, ok)
	rootPkg := result.Package(rootId)
	assert.Equal(t, []string{"main.lm"}, rootPkg.RegularFiles)
	assert.Equal(t, []string{"README.lm.md"}, rootPkg.MarkdownDocs)

	libId, ok := result.PackageByFQN("alice/hello/lib")
	require.True(t, ok)
	libPkg := result.Package(libId)
	assert.Equal(t, []string{"util.lm"}, libPkg.RegularFiles)
	assert.Equal(t, []string{"grammar.lmy"}, libPkg.ParserFiles)
	assert.Equal(t, []string{"tokens.lml"}, libPkg.LexerFiles)
}

func TestDiscoverStopsAtNestedModuleBoundary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(root, PackageManifestName), `{}`)
	writeFile(t, filepath.Join(root, "vendor", ModuleManifestName), `{"name": "bob/vendored"}`)
	writeFile(t, filepath.Join(root, "vendor", PackageManifestName), `{}`)

	result, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/hello"), Root: root}})
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	assert.Equal(t, "alice/hello", result.Packages[0].Fqn.String())
}

func TestDiscoverRejectsModuleNameMismatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello"}`)

	_, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/other"), Root: root}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares name")
}

func TestDiscoverRejectsEscapingNativeStub(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(root, PackageManifestName), `{"native-stub": ["../../etc/passwd"]}`)

	_, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/hello"), Root: root}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the package directory")
}

func TestDiscoverResolvesVirtualInterfaceWithFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(root, "iface", PackageManifestName), `{"virtual-pkg": {"has-default": false}}`)
	writeFile(t, filepath.Join(root, "iface", "iface.lmti"), "")

	result, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/hello"), Root: root}})
	require.NoError(t, err)
	id, ok := result.PackageByFQN("alice/hello/iface")
	require.True(t, ok)
	pkg := result.Package(id)
	assert.Equal(t, filepath.Join(root, "iface", "iface.lmti"), pkg.VirtualInterfaceFile)
}

func TestDiscoverRejectsMissingVirtualInterface(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(root, "iface", PackageManifestName), `{"virtual-pkg": {"has-default": false}}`)

	_, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/hello"), Root: root}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no interface file")
}

func TestDiscoverRejectsConflictingFQN(t *testing.T) {
	rootA := t.TempDir()
	writeFile(t, filepath.Join(rootA, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(rootA, PackageManifestName), `{}`)

	rootB := t.TempDir()
	writeFile(t, filepath.Join(rootB, ModuleManifestName), `{"name": "alice/hello"}`)
	writeFile(t, filepath.Join(rootB, PackageManifestName), `{}`)

	_, err := Discover([]ResolvedModule{
		{Source: moduleSource(t, "alice/hello"), Root: rootA},
		{Source: moduleSource(t, "alice/hello"), Root: rootB},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting package name")
}

func TestDiscoverUsesModuleSourceField(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ModuleManifestName), `{"name": "alice/hello", "source": "src"}`)
	writeFile(t, filepath.Join(root, "src", PackageManifestName), `{}`)
	writeFile(t, filepath.Join(root, "notsrc", PackageManifestName), `{}`)

	result, err := Discover([]ResolvedModule{{Source: moduleSource(t, "alice/hello"), Root: root}})
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	assert.Equal(t, "alice/hello", result.Packages[0].Fqn.String())
}
