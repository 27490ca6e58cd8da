// Optional project-level defaults for BuildOptions, read once at the edge,
// never mid-pipeline. Reads a small ini-style config file with gcfg,
// covering only the subset of fields relevant to planning defaults, and
// only when a caller explicitly asks for it.
package core

import (
	"os"

	"gopkg.in/gcfg.v1"
)

// LocalConfigFileName is the (optional, not normally checked in) file name
// for machine-local overrides of build defaults.
const LocalConfigFileName = ".lumenbuild.local"

// ConfigFileName is the (normally checked in) project-level defaults file.
const ConfigFileName = ".lumenbuild"

// projectConfig mirrors the handful of BuildOptions fields a project might
// want to default, in gcfg's `[section] key = value` form.
type projectConfig struct {
	Build struct {
		Backend      string
		OptLevel     string
		StdlibPath   string
		RuntimeCPath string
	}
	Toolchain struct {
		Compiler string
		CC       string
		AR       string
		Runner   string
	}
}

// ReadDefaultOptions reads ConfigFileName and LocalConfigFileName (if
// present; absence of either is not an error) under repoRoot and applies
// them on top of base, returning the merged BuildOptions. The local file
// takes precedence over the project file.
func ReadDefaultOptions(repoRoot string, base BuildOptions) (BuildOptions, error) {
	var cfg projectConfig
	for _, name := range []string{ConfigFileName, LocalConfigFileName} {
		path := repoRoot + string(os.PathSeparator) + name
		if err := gcfg.ReadFileInto(&cfg, path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			if fatal := gcfg.FatalOnly(err); fatal != nil {
				return base, &ManifestError{Path: path, Err: fatal}
			}
			log.Warning("error in config file %s: %s", path, err)
		}
	}
	opts := base
	if cfg.Build.Backend != "" {
		if b, err := ParseBackend(cfg.Build.Backend); err == nil {
			opts.Backend = b
		}
	}
	if cfg.Build.OptLevel != "" {
		if o, err := ParseOptLevel(cfg.Build.OptLevel); err == nil {
			opts.OptLevel = o
		}
	}
	if cfg.Build.StdlibPath != "" {
		opts.StdlibPath = cfg.Build.StdlibPath
	}
	if cfg.Build.RuntimeCPath != "" {
		opts.RuntimeCPath = cfg.Build.RuntimeCPath
	}
	if cfg.Toolchain.Compiler != "" {
		opts.Compilers.Compiler = cfg.Toolchain.Compiler
	}
	if cfg.Toolchain.CC != "" {
		opts.Compilers.CC = cfg.Toolchain.CC
	}
	if cfg.Toolchain.AR != "" {
		opts.Compilers.AR = cfg.Toolchain.AR
	}
	if cfg.Toolchain.Runner != "" {
		opts.Compilers.Runner = cfg.Toolchain.Runner
	}
	return opts, nil
}
