package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlang/lumenbuild/src/core"
)

func TestClassifyFilenameSuffixes(t *testing.T) {
	kind, _ := ClassifyFilename("foo.lm")
	assert.Equal(t, SourceFile, kind)

	kind, _ = ClassifyFilename("foo_test.lm")
	assert.Equal(t, BlackboxFile, kind)

	kind, _ = ClassifyFilename("foo_wbtest.lm")
	assert.Equal(t, WhiteboxFile, kind)
}

func TestClassifyFilenameBackendAndOptLevelTokens(t *testing.T) {
	_, pred := ClassifyFilename("foo.wasm.lm")
	assert.True(t, pred(core.Wasm, core.Debug))
	assert.False(t, pred(core.Js, core.Debug))

	_, pred = ClassifyFilename("foo.wasm.release.lm")
	assert.True(t, pred(core.Wasm, core.Release))
	assert.False(t, pred(core.Wasm, core.Debug))
	assert.False(t, pred(core.Js, core.Release))
}

func TestEvalExprAtomAndCompoundForms(t *testing.T) {
	atom := core.FileTarget{Backend: "js"}
	pred, err := EvalExpr(atom)
	require.NoError(t, err)
	assert.True(t, pred(core.Js, core.Debug))
	assert.False(t, pred(core.Wasm, core.Debug))

	notExpr := core.FileTarget{Op: "not", Args: []core.FileTarget{atom}}
	pred, err = EvalExpr(notExpr)
	require.NoError(t, err)
	assert.False(t, pred(core.Js, core.Debug))
	assert.True(t, pred(core.Wasm, core.Debug))

	orExpr := core.FileTarget{Op: "first-atom", Args: []core.FileTarget{
		{Backend: "js"}, {Backend: "wasm"},
	}}
	pred, err = EvalExpr(orExpr)
	require.NoError(t, err)
	assert.True(t, pred(core.Js, core.Debug))
	assert.True(t, pred(core.Wasm, core.Debug))
	assert.False(t, pred(core.NativeC, core.Debug))

	andExpr := core.FileTarget{Op: "and", Args: []core.FileTarget{
		{Backend: "wasm"}, {OptLevel: "release"},
	}}
	pred, err = EvalExpr(andExpr)
	require.NoError(t, err)
	assert.True(t, pred(core.Wasm, core.Release))
	assert.False(t, pred(core.Wasm, core.Debug))
}

func TestFilesSelectsSourceAndWhiteboxWithManifestPredicate(t *testing.T) {
	pkg := &core.DiscoveredPackage{
		RegularFiles: []string{"main.lm", "main_wbtest.lm", "js_only.lm"},
		Manifest: core.PackageManifest{
			SupportedTargets: map[string]core.FileTarget{
				"js_only.lm": {Backend: "js"},
			},
		},
	}

	files, err := Files(pkg, core.Source, core.Wasm, core.Debug)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.lm"}, files)

	files, err = Files(pkg, core.WhiteboxTest, core.Wasm, core.Debug)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.lm", "main_wbtest.lm"}, files)

	files, err = Files(pkg, core.Source, core.Js, core.Debug)
	require.NoError(t, err)
	assert.Equal(t, []string{"js_only.lm", "main.lm"}, files)
}

func TestFilesExtractsDoctestsForBlackboxTarget(t *testing.T) {
	root := t.TempDir()
	doc := "guide.lm.md"
	content := "# Guide\n\n```lumen\nlet x = 1\n```\n\ntext\n\n```lumen\nlet y = 2\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, doc), []byte(content), 0o644))

	pkg := &core.DiscoveredPackage{
		Root:         root,
		MarkdownDocs: []string{doc},
	}
	files, err := Files(pkg, core.BlackboxTest, core.Wasm, core.Debug)
	require.NoError(t, err)
	assert.Equal(t, []string{"guide.lm.md#doctest-0", "guide.lm.md#doctest-1"}, files)
}

func TestFilesSubPackageUsesExplicitListUnfiltered(t *testing.T) {
	pkg := &core.DiscoveredPackage{
		Manifest: core.PackageManifest{SubPackageFiles: []string{"b.lm", "a.lm"}},
	}
	files, err := Files(pkg, core.SubPackage, core.Wasm, core.Debug)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lm", "b.lm"}, files)
}
