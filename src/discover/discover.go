package discover

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/karrick/godirwalk"

	"github.com/lumenlang/lumenbuild/src/cli/logging"
	"github.com/lumenlang/lumenbuild/src/core"
	"github.com/lumenlang/lumenbuild/src/fs"
)

var log = logging.Log

// ModuleManifestName is the file name of a module manifest.
const ModuleManifestName = "lumen.mod.json"

// PackageManifestName is the file name of a package manifest.
const PackageManifestName = "lumen.pkg.json"

// ignoredDirNames are never recursed into.
var ignoredDirNames = map[string]bool{
	"target":     true,
	".git":       true,
	".lumen-dep": true,
}

// Discover walks every resolved module's source tree and returns the flat
// package table. All listed failures are fatal and are
// aggregated (via go-multierror) so a single run can report every bad
// package at once rather than stopping at the first; on any error the
// returned *Result is nil, matching "on fatal error, the core emits no
// action graph".
func Discover(modules []ResolvedModule) (*Result, error) {
	result := newResult()
	var errs *multierror.Error

	for _, mod := range modules {
		modId := result.addModule()
		result.Modules = append(result.Modules, mod)
		if err := discoverModule(result, modId, mod); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return result, nil
}

func discoverModule(result *Result, modId core.ModuleId, mod ResolvedModule) error {
	manifestPath := filepath.Join(mod.Root, ModuleManifestName)
	manifest, err := readModuleManifest(manifestPath)
	if err != nil {
		return err
	}
	if manifest.Name != "" && manifest.Name != mod.Source.Name.String() {
		return &core.ModuleNameMismatchError{
			Root:         mod.Root,
			ManifestName: manifest.Name,
			ResolvedName: mod.Source.Name.String(),
		}
	}

	if len(manifest.Deps) > 0 {
		deps := make(map[string]bool, len(manifest.Deps))
		for name := range manifest.Deps {
			deps[name] = true
		}
		result.ModuleDeps[modId] = deps
	}

	scanRoot := manifest.ScanRoot(mod.Root)
	var errs *multierror.Error
	err = fs.WalkDirectories(scanRoot, func(dir, relPath string) (descend bool, err error) {
		base := filepath.Base(dir)
		if dir != scanRoot && ignoredDirNames[base] {
			return false, nil
		}
		if dir != scanRoot && fs.FileExists(filepath.Join(dir, ModuleManifestName)) {
			// A nested module boundary: stop descent.
			return false, nil
		}
		if fs.FileExists(filepath.Join(dir, PackageManifestName)) {
			pkg, err := discoverPackage(result, modId, mod.Source, dir, relPath)
			if err != nil {
				errs = multierror.Append(errs, err)
			} else if err := result.addPackage(pkg); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		return true, nil
	})
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

func discoverPackage(result *Result, modId core.ModuleId, modSource core.ModuleSource, dir, relPath string) (*core.DiscoveredPackage, error) {
	manifestPath := filepath.Join(dir, PackageManifestName)
	manifest, err := readPackageManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	pkgPath, err := core.NewPackagePath(filepath.ToSlash(relPath))
	if err != nil {
		return nil, &core.ManifestError{Path: manifestPath, Err: err}
	}

	pkg := &core.DiscoveredPackage{
		Root:     dir,
		Fqn:      core.PackageFQN{Module: modSource, PackagePath: pkgPath},
		Module:   modId,
		Manifest: manifest,
	}

	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, &core.ManifestError{Path: dir, Err: err}
	}
	sort.Sort(entries)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		classifyFile(pkg, e.Name())
	}
	sort.Strings(pkg.RegularFiles)
	sort.Strings(pkg.LexerFiles)
	sort.Strings(pkg.ParserFiles)
	sort.Strings(pkg.MarkdownDocs)

	if err := resolveStubs(pkg, dir); err != nil {
		return nil, err
	}
	if manifest.IsVirtual() {
		if err := resolveVirtualInterface(pkg, dir); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

// classifyFile assigns a file to one of the four source-file lists by pure
// filename-suffix inspection. Anything else is ignored.
func classifyFile(pkg *core.DiscoveredPackage, name string) {
	switch {
	case strings.HasSuffix(name, ".lm.md"):
		pkg.MarkdownDocs = append(pkg.MarkdownDocs, name)
	case strings.HasSuffix(name, ".lm"):
		pkg.RegularFiles = append(pkg.RegularFiles, name)
	case strings.HasSuffix(name, ".lml"):
		pkg.LexerFiles = append(pkg.LexerFiles, name)
	case strings.HasSuffix(name, ".lmy"):
		pkg.ParserFiles = append(pkg.ParserFiles, name)
	}
}

// resolveStubs resolves the manifest's native-stub paths against the
// package directory, rejecting any that escape it.
func resolveStubs(pkg *core.DiscoveredPackage, dir string) error {
	stubs := make([]string, 0, len(pkg.Manifest.NativeStubs))
	for _, rel := range pkg.Manifest.NativeStubs {
		clean := path.Clean(rel)
		if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
			return &core.InvalidStubPathError{Package: pkg.Fqn.String(), Path: rel}
		}
		stubs = append(stubs, clean)
	}
	sort.Strings(stubs)
	pkg.CStubFiles = stubs
	return nil
}

// resolveVirtualInterface finds a virtual package's `.lmti` interface file:
// prefer "pkg.lmti", fall back to "<short-alias>.lmti" with a deprecation
// warning, fail if neither exists.
func resolveVirtualInterface(pkg *core.DiscoveredPackage, dir string) error {
	preferred := filepath.Join(dir, "pkg.lmti")
	if fs.FileExists(preferred) {
		pkg.VirtualInterfaceFile = preferred
		return nil
	}
	fallback := filepath.Join(dir, pkg.Fqn.ShortAlias()+".lmti")
	if fs.FileExists(fallback) {
		log.Warning("%s: using deprecated %s.lmti for its virtual interface; rename to pkg.lmti", pkg.Fqn, pkg.Fqn.ShortAlias())
		pkg.VirtualInterfaceFile = fallback
		return nil
	}
	return &core.MissingVirtualInterfaceError{Package: pkg.Fqn.String()}
}

func readModuleManifest(path string) (core.ModuleManifest, error) {
	var m core.ModuleManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, &core.ManifestError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, &core.ManifestError{Path: path, Err: err}
	}
	return m, nil
}

func readPackageManifest(path string) (core.PackageManifest, error) {
	var m core.PackageManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, &core.ManifestError{Path: path, Err: err}
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return m, &core.ManifestError{Path: path, Err: err}
		}
	}
	return m, nil
}
