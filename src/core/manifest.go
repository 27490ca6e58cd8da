package core

// ModuleManifest is the parsed content of a module's `lumen.mod.json`
// manifest. The core only ever reads this; it is produced by an
// external collaborator (module resolution) together with the on-disk root.
type ModuleManifest struct {
	Name       string            `json:"name"`
	Version    string            `json:"version,omitempty"`
	Source     string            `json:"source,omitempty"`
	Repository string            `json:"repository,omitempty"`
	Deps       map[string]string `json:"deps,omitempty"`
	WarnList   string            `json:"warn-list,omitempty"`
	AlertList  string            `json:"alert-list,omitempty"`
}

// ScanRoot returns the directory the discoverer should walk for packages:
// `<root>/<source>`, defaulting to `<root>`.
func (m ModuleManifest) ScanRoot(moduleRoot string) string {
	if m.Source == "" {
		return moduleRoot
	}
	return moduleRoot + "/" + m.Source
}

// LinkBlock carries the per-backend C/native link configuration declared by
// a package manifest ("per-backend link block").
type LinkBlock struct {
	CC        string   `json:"cc,omitempty"`
	CCFlags   []string `json:"cc-flags,omitempty"`
	Flags     []string `json:"flags,omitempty"`
	StaticLib []string `json:"static-lib,omitempty"` // system libraries
}

// VirtualPkgBlock marks a package as virtual.
type VirtualPkgBlock struct {
	HasDefault bool `json:"has-default"`
}

// Import is one entry of an import list: a target package string plus
// optional alias, and whether it targets the sub-package variant of the
// dependency.
type Import struct {
	Path       string `json:"path"`
	Alias      string `json:"alias,omitempty"`
	SubPackage bool   `json:"sub-package,omitempty"`
}

// PrebuildRule is a user-declared generator rule: a command template using
// `$input`/`$output` placeholders.
type PrebuildRule struct {
	Command string   `json:"command"`
	Input   []string `json:"input"`
	Output  []string `json:"output"`
}

// FileTarget is a per-file `supported-targets` predicate expression. It is one of: an atom (`Backend` and/or `OptLevel` populated), or a
// compound form (`Op` populated with `Args`).
type FileTarget struct {
	// Atom form.
	Backend  string `json:"backend,omitempty"`
	OptLevel string `json:"opt-level,omitempty"`
	// Compound form: Op is one of "not", "and", "or", "first-atom".
	Op   string       `json:"op,omitempty"`
	Args []FileTarget `json:"args,omitempty"`
}

// IsAtom reports whether this is a leaf atom rather than a compound
// expression.
func (e FileTarget) IsAtom() bool {
	return e.Op == ""
}

// PackageManifest is the parsed content of a package's `lumen.pkg.json`
// manifest.
type PackageManifest struct {
	IsMain    bool `json:"is-main,omitempty"`
	ForceLink bool `json:"force-link,omitempty"`

	Imports         []Import `json:"imports,omitempty"`
	WhiteboxImports []Import `json:"wbtest-imports,omitempty"`
	BlackboxImports []Import `json:"test-imports,omitempty"`
	SubPkgImports   []Import `json:"sub-package-imports,omitempty"`

	Link map[string]LinkBlock `json:"link,omitempty"`

	// SupportedTargets maps a file name to its predicate expression.
	SupportedTargets map[string]FileTarget `json:"supported-targets,omitempty"`

	PreBuild    []PrebuildRule `json:"pre-build,omitempty"`
	NativeStubs []string       `json:"native-stub,omitempty"`

	VirtualPkg *VirtualPkgBlock `json:"virtual-pkg,omitempty"`
	Implement  string           `json:"implement,omitempty"`
	Overrides  []string         `json:"overrides,omitempty"`

	WarnList  string `json:"warn-list,omitempty"`
	AlertList string `json:"alert-list,omitempty"`

	BinName   string `json:"bin-name,omitempty"`
	BinTarget string `json:"bin-target,omitempty"`

	// SubPackageFiles is the explicit file list for the SubPackage target.
	SubPackageFiles []string `json:"sub-package-files,omitempty"`

	TestImportAll bool `json:"test-import-all,omitempty"`

	Formatter struct {
		Ignore []string `json:"ignore,omitempty"`
	} `json:"formatter,omitempty"`
}

// IsVirtual reports whether this package declares itself virtual.
func (m PackageManifest) IsVirtual() bool {
	return m.VirtualPkg != nil
}

// ImportsFor returns the import list that feeds the given originating kind
// (regular / whitebox / blackbox / sub-package), per.
func (m PackageManifest) ImportsFor(kind ImportKind) []Import {
	switch kind {
	case RegularImport:
		return m.Imports
	case WhiteboxImport:
		return m.WhiteboxImports
	case BlackboxImport:
		return m.BlackboxImports
	case SubPackageImport:
		return m.SubPkgImports
	default:
		return nil
	}
}

// ImportKind identifies which of a package manifest's four import lists an
// import came from.
type ImportKind int

const (
	RegularImport ImportKind = iota
	WhiteboxImport
	BlackboxImport
	SubPackageImport
)

func (k ImportKind) String() string {
	switch k {
	case RegularImport:
		return "regular"
	case WhiteboxImport:
		return "whitebox"
	case BlackboxImport:
		return "blackbox"
	case SubPackageImport:
		return "sub-package"
	default:
		return "unknown"
	}
}

// TargetsFor returns the set of source build-target kinds that should carry
// an import of the given kind.
func (k ImportKind) TargetsFor() []TargetKind {
	switch k {
	case RegularImport:
		return []TargetKind{Source, InlineTest, WhiteboxTest, BlackboxTest}
	case WhiteboxImport:
		return []TargetKind{WhiteboxTest}
	case BlackboxImport:
		return []TargetKind{BlackboxTest}
	case SubPackageImport:
		return []TargetKind{SubPackage}
	default:
		return nil
	}
}
